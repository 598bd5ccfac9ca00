package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yzsnstotz/tlvc"
	"github.com/yzsnstotz/tlvc/fs"
)

// Story: Atomic Artifact Storage
// The store uses a temp directory so a failed run never leaves partial output

func TestArtifactStore_SaveWritesToTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store targeting an episode directory
	base := t.TempDir()
	store := fs.NewArtifactStore(base)

	// When I save an artifact
	err := store.Save(context.Background(), &tlvc.Artifact{Name: tlvc.LintArtifactName, Data: []byte("{}\n")})

	// Then no error occurs
	require.NoError(t, err)

	// And the file exists in the temp directory (not final)
	_, err = os.Stat(filepath.Join(base, "step2_preprocess.tmp", tlvc.LintArtifactName))
	require.NoError(t, err, "file should exist in temp directory")

	// And final directory does not exist yet
	_, err = os.Stat(filepath.Join(base, "step2_preprocess"))
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestArtifactStore_CommitMovesFromTempToFinal(t *testing.T) {
	t.Parallel()

	// Given a store with saved artifacts
	base := t.TempDir()
	store := fs.NewArtifactStore(base)
	require.NoError(t, store.Save(context.Background(), &tlvc.Artifact{Name: tlvc.TranscriptArtifactName, Data: []byte("{\"a\": 1}\n")}))

	// When I commit
	err := store.Commit()

	// Then the final directory holds the artifact
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(store.Dir(), tlvc.TranscriptArtifactName))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\": 1}\n", string(data))

	// And temp directory is gone
	_, err = os.Stat(filepath.Join(base, "step2_preprocess.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after commit")
}

func TestArtifactStore_CommitReplacesPreviousRun(t *testing.T) {
	t.Parallel()

	// Given a previous run left a stale artifact
	base := t.TempDir()
	stale := filepath.Join(base, "step2_preprocess", "stale.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))

	// When a new run saves and commits
	store := fs.NewArtifactStore(base)
	require.NoError(t, store.Save(context.Background(), &tlvc.Artifact{Name: tlvc.SegmentsArtifactName, Data: []byte("new")}))
	require.NoError(t, store.Commit())

	// Then only the new artifacts remain
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "step2_preprocess", tlvc.SegmentsArtifactName))
	assert.NoError(t, err)
}

func TestArtifactStore_AbortCleansUpTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store with saved artifacts
	base := t.TempDir()
	store := fs.NewArtifactStore(base)
	require.NoError(t, store.Save(context.Background(), &tlvc.Artifact{Name: tlvc.LintArtifactName, Data: []byte("{}")}))

	// When I abort
	err := store.Abort()

	// Then nothing is left behind
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "step2_preprocess.tmp"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "step2_preprocess"))
	assert.True(t, os.IsNotExist(err))
}

func TestArtifactStore_RejectsNestedNames(t *testing.T) {
	t.Parallel()

	store := fs.NewArtifactStore(t.TempDir())

	err := store.Save(context.Background(), &tlvc.Artifact{Name: "../escape.json"})

	assert.Equal(t, tlvc.EINVALID, tlvc.ErrorCode(err))
}

func TestArtifactStore_HonorsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fs.NewArtifactStore(t.TempDir()).Save(ctx, &tlvc.Artifact{Name: tlvc.LintArtifactName})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestArtifactStore_DiscardsLeftoversFromCrashedRun(t *testing.T) {
	t.Parallel()

	// Given a temp directory left behind by a crashed run
	base := t.TempDir()
	tmp := filepath.Join(base, "step2_preprocess.tmp")
	require.NoError(t, os.MkdirAll(tmp, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "stale.json"), []byte("{}\n"), 0644))
	store := fs.NewArtifactStore(base)

	// When I save and commit a new run
	require.NoError(t, store.Save(context.Background(), &tlvc.Artifact{Name: tlvc.LintArtifactName, Data: []byte("{}\n")}))
	require.NoError(t, store.Commit())

	// Then the new artifact is published
	_, err := os.Stat(filepath.Join(base, "step2_preprocess", tlvc.LintArtifactName))
	require.NoError(t, err)

	// And the stale file is not
	_, err = os.Stat(filepath.Join(base, "step2_preprocess", "stale.json"))
	assert.True(t, os.IsNotExist(err), "leftover file should not be published")
}
