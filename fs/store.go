package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/yzsnstotz/tlvc"
)

// Ensure ArtifactStore implements tlvc.ArtifactStore at compile time.
var _ tlvc.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements tlvc.ArtifactStore with atomic update semantics.
// Artifacts are saved to a temporary directory, then moved atomically on Commit.
type ArtifactStore struct {
	baseDir string
	name    string
	started bool
}

// NewArtifactStore creates a new ArtifactStore.
// baseDir is the episode output directory. Files are saved to
// baseDir/step2_preprocess.tmp and moved to baseDir/step2_preprocess on Commit.
func NewArtifactStore(baseDir string) *ArtifactStore {
	return &ArtifactStore{
		baseDir: baseDir,
		name:    tlvc.ArtifactDir,
	}
}

func (s *ArtifactStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ArtifactStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Dir returns the directory artifacts are visible in after Commit.
func (s *ArtifactStore) Dir() string {
	return s.finalDir()
}

func (s *ArtifactStore) Save(ctx context.Context, artifact *tlvc.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if artifact.Name == "" || filepath.Base(artifact.Name) != artifact.Name {
		return tlvc.Errorf(tlvc.EINVALID, "invalid artifact name: %q", artifact.Name)
	}

	// Leftovers from a crashed run must not be published.
	if !s.started {
		if err := os.RemoveAll(s.tempDir()); err != nil {
			return err
		}
		s.started = true
	}
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.tempDir(), artifact.Name), artifact.Data, 0644)
}

func (s *ArtifactStore) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	// Atomically rename temp to final
	s.started = false
	return os.Rename(s.tempDir(), s.finalDir())
}

func (s *ArtifactStore) Abort() error {
	s.started = false
	return os.RemoveAll(s.tempDir())
}
