package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yzsnstotz/tlvc"
	"gopkg.in/yaml.v3"
)

// Ensure ProfileLoader implements tlvc.ProfileLoader at compile time.
var _ tlvc.ProfileLoader = (*ProfileLoader)(nil)

// Profile directory defaults.
const (
	DefaultProfilesDir = "profiles/extractors"
	DefaultProfileName = "telegram_export_v1.json"
	ProfileIndexName   = "index.json"
)

// ProfileLoader reads extraction profiles from a profiles directory.
// JSON is the canonical format; .yaml and .yml files are read as YAML.
type ProfileLoader struct {
	Dir string
}

// NewProfileLoader creates a ProfileLoader rooted at dir.
func NewProfileLoader(dir string) *ProfileLoader {
	if dir == "" {
		dir = DefaultProfilesDir
	}
	return &ProfileLoader{Dir: dir}
}

// LoadProfile reads and validates the profile at path.
func (l *ProfileLoader) LoadProfile(path string) (*tlvc.Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, tlvc.Errorf(tlvc.ENOTFOUND, "profile not found: %s", path)
	} else if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	var p tlvc.Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, tlvc.Errorf(tlvc.EINVALID, "invalid profile %s: %v", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ResolveProfilePath maps a bare profile name (no separator, no extension)
// to <Dir>/<name>.json. An empty value selects the default profile. Paths
// are returned unchanged.
func (l *ProfileLoader) ResolveProfilePath(nameOrPath string) string {
	if nameOrPath == "" {
		return l.DefaultProfilePath()
	}
	if isBareName(nameOrPath) {
		return filepath.Join(l.Dir, nameOrPath+".json")
	}
	return nameOrPath
}

type profileIndex struct {
	DefaultProfile string `json:"defaultProfile"`
}

// DefaultProfilePath reads the defaultProfile entry of <Dir>/index.json and
// falls back to <Dir>/telegram_export_v1.json.
func (l *ProfileLoader) DefaultProfilePath() string {
	data, err := os.ReadFile(filepath.Join(l.Dir, ProfileIndexName))
	if err == nil {
		var idx profileIndex
		if json.Unmarshal(data, &idx) == nil && idx.DefaultProfile != "" {
			name := idx.DefaultProfile
			if isBareName(name) {
				name += ".json"
			}
			if filepath.IsAbs(name) {
				return name
			}
			return filepath.Join(l.Dir, name)
		}
	}
	return filepath.Join(l.Dir, DefaultProfileName)
}

func isBareName(s string) bool {
	return !strings.ContainsAny(s, `/\`) && filepath.Ext(s) == ""
}
