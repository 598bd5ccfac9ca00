// Package fs provides file system access for transcript exports, extraction
// profiles, and output artifacts.
package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yzsnstotz/tlvc"
)

// Ensure Resolver implements tlvc.InputResolver at compile time.
var _ tlvc.InputResolver = (*Resolver)(nil)

// DefaultCandidates are the file names tried first in an export folder.
var DefaultCandidates = []string{"messages.html"}

var messageMarkerRe = regexp.MustCompile(`class\s*=\s*["'][^"']*message`)

// Resolver locates the HTML document of a chat export.
type Resolver struct {
	// Candidates are exact file names tried, in order, before any scan.
	Candidates []string
}

// NewResolver creates a Resolver with the default candidate names.
func NewResolver() *Resolver {
	return &Resolver{Candidates: DefaultCandidates}
}

// Resolve accepts a direct HTML file path or an export folder path and
// returns absolute paths for the document, its export root, and any
// sibling asset directories.
func (r *Resolver) Resolve(path string) (*tlvc.ResolvedInput, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, tlvc.Errorf(tlvc.ENOTFOUND, "input not found: %s", abs)
	} else if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}

	in := &tlvc.ResolvedInput{InputPath: abs}
	if info.IsDir() {
		htmlPath, err := r.findHTML(abs)
		if err != nil {
			return nil, err
		}
		in.Kind = tlvc.InputDir
		in.ExportRoot = abs
		in.HTMLPath = htmlPath
	} else {
		name := strings.ToLower(info.Name())
		if name != "messages.html" && !strings.HasSuffix(name, ".html") {
			return nil, tlvc.Errorf(tlvc.ENOHTML, "input is not an HTML file: %s", abs)
		}
		in.Kind = tlvc.InputFile
		in.ExportRoot = filepath.Dir(abs)
		in.HTMLPath = abs
	}
	in.Assets = probeAssets(in.ExportRoot)
	return in, nil
}

// findHTML tries exact candidates, then messages*.html, then a shallow scan
// for any .html file carrying a message class marker. Top-level files come
// before subdirectory files; both levels are taken in lexicographic order.
func (r *Resolver) findHTML(dir string) (string, error) {
	for _, name := range r.Candidates {
		p := filepath.Join(dir, name)
		if isFile(p) {
			return p, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read export dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match("messages*.html", strings.ToLower(e.Name())); ok {
			return filepath.Join(dir, e.Name()), nil
		}
	}

	if p := scanForMarker(dir, entries); p != "" {
		return p, nil
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		subEntries, err := os.ReadDir(sub)
		if err != nil {
			continue
		}
		if p := scanForMarker(sub, subEntries); p != "" {
			return p, nil
		}
	}

	return "", tlvc.Errorf(tlvc.ENOHTML, "no HTML document found in %s", dir)
}

// scanForMarker returns the first .html file in entries whose content has a
// class attribute containing "message".
func scanForMarker(dir string, entries []os.DirEntry) string {
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".html") {
			continue
		}
		p := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if messageMarkerRe.Match(data) {
			return p
		}
	}
	return ""
}

func probeAssets(root string) tlvc.Assets {
	var a tlvc.Assets
	for _, probe := range []struct {
		name string
		dst  *string
	}{
		{"photos", &a.PhotosDir},
		{"images", &a.ImagesDir},
		{"css", &a.CSSDir},
		{"js", &a.JSDir},
	} {
		p := filepath.Join(root, probe.name)
		if isDir(p) {
			*probe.dst = p
		}
	}
	return a
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
