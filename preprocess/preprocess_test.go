package preprocess_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yzsnstotz/tlvc"
	"github.com/yzsnstotz/tlvc/mock"
	"github.com/yzsnstotz/tlvc/orderedmap"
	"github.com/yzsnstotz/tlvc/preprocess"
)

var rotation = []string{"Leo", "AO000", "AO001"}

// extracted builds n messages with valid timestamps, rotating senders, and
// "401 Unauthorized" at the given indices.
func extracted(n int, errs ...int) []tlvc.ExtractedMessage {
	out := make([]tlvc.ExtractedMessage, n)
	base := time.Date(2024, 1, 15, 5, 0, 0, 0, time.UTC)
	for i := range out {
		raw := rotation[i%len(rotation)]
		ts := base.Add(time.Duration(i) * time.Minute)
		out[i] = tlvc.ExtractedMessage{
			SourceID:         fmt.Sprintf("message%d", i+1),
			RawSender:        raw,
			Sender:           tlvc.ParseSender(raw),
			RawTimestampText: ts.Format(time.RFC3339),
			Timestamp:        ts.Format(tlvc.TimestampLayout),
			Text:             "ok",
		}
	}
	for _, i := range errs {
		out[i].Text = "401 Unauthorized"
	}
	return out
}

// newPreprocessor returns a Preprocessor over a temporary HTML file whose
// extractor yields msgs.
func newPreprocessor(t *testing.T, msgs []tlvc.ExtractedMessage) *preprocess.Preprocessor {
	t.Helper()

	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "messages.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte(`<div class="message">x</div>`), 0o644))

	return &preprocess.Preprocessor{
		Resolver: &mock.InputResolver{
			ResolveFn: func(path string) (*tlvc.ResolvedInput, error) {
				return &tlvc.ResolvedInput{
					Kind:       tlvc.InputDir,
					InputPath:  path,
					ExportRoot: dir,
					HTMLPath:   htmlPath,
					Assets:     tlvc.Assets{PhotosDir: filepath.Join(dir, "photos")},
				}, nil
			},
		},
		Profiles: &mock.ProfileLoader{
			LoadProfileFn: func(path string) (*tlvc.Profile, error) {
				return &tlvc.Profile{Meta: &tlvc.ProfileMeta{Name: "test", Version: 3}}, nil
			},
		},
		Extractor: &mock.MessageExtractor{
			ExtractFn: func(html string, profile *tlvc.Profile, loc *time.Location) (*tlvc.Extraction, error) {
				return &tlvc.Extraction{
					Messages: msgs,
					Stats:    tlvc.ExtractionStats{ContainerMatches: len(msgs)},
				}, nil
			},
		},
		Detector: &mock.FormatDetector{
			DetectFn: func(html string) tlvc.ExportFormat { return tlvc.FormatTelegram },
		},
	}
}

func options() preprocess.Options {
	return preprocess.Options{
		Input:       "/in/ep_0001",
		EpisodeID:   "ep_0001",
		K:           3,
		Timezone:    "Asia/Tokyo",
		ProfilePath: "profiles/extractors/telegram_export_v1.json",
	}
}

func TestPreprocessor_Run(t *testing.T) {
	t.Parallel()

	t.Run("builds a window around a single error", func(t *testing.T) {
		t.Parallel()

		p := newPreprocessor(t, extracted(80, 50))

		result, err := p.Run(options())

		require.NoError(t, err)
		require.Len(t, result.Transcript.Messages, 80)
		assert.Equal(t, "m000001", result.Transcript.Messages[0].ID)
		assert.Equal(t, tlvc.SchemaVersion, result.Transcript.Meta.SchemaVersion)
		assert.Nil(t, result.Transcript.Meta.Source)

		require.Len(t, result.TopK.Segments, 1)
		top := result.TopK.Segments[0]
		assert.Equal(t, "s001", top.ID)
		assert.Equal(t, 44, top.StartIndex)
		assert.Equal(t, 62, top.EndIndex)
		assert.Equal(t, 19, top.Len())
		assert.Equal(t, tlvc.ModeError, result.TopK.Meta.Mode)
		assert.Equal(t, 3, result.TopK.Meta.K)

		assert.True(t, result.Lint.OK)
		assert.Equal(t, tlvc.ExitOK, result.ExitCode)
	})

	t.Run("falls back to fixed slices without errors", func(t *testing.T) {
		t.Parallel()

		p := newPreprocessor(t, extracted(30))

		result, err := p.Run(options())

		require.NoError(t, err)
		require.Len(t, result.TopK.Segments, 1)
		assert.Equal(t, 0, result.TopK.Segments[0].StartIndex)
		assert.Equal(t, 29, result.TopK.Segments[0].EndIndex)
		assert.Equal(t, tlvc.ModeFallback, result.TopK.Meta.Mode)
		assert.True(t, result.Lint.OK)
		require.Len(t, result.Lint.Infos, 1)
		assert.Equal(t, tlvc.LintFallbackSegmentation, result.Lint.Infos[0].Code)
	})

	t.Run("redacts before segmenting", func(t *testing.T) {
		t.Parallel()

		msgs := extracted(20, 5)
		msgs[3].Text = "token=abcdefghijklmnopqrstuvwxyz"

		result, err := newPreprocessor(t, msgs).Run(options())

		require.NoError(t, err)
		assert.Equal(t, "***", result.Transcript.Messages[3].Text)
		assert.Equal(t, 1, result.Transcript.Redaction.TotalHits)
		assert.Equal(t, 1, result.Transcript.Redaction.HitsByRule["token.generic"])
		assert.Equal(t, "token=abcdefghijklmnopqrstuvwxyz", msgs[3].Text)
	})

	t.Run("records the source when asked", func(t *testing.T) {
		t.Parallel()

		opts := options()
		opts.RecordSource = true

		result, err := newPreprocessor(t, extracted(12, 0)).Run(opts)

		require.NoError(t, err)
		require.NotNil(t, result.Transcript.Meta.Source)
		assert.Equal(t, "/in/ep_0001", result.Transcript.Meta.Source.InputPath)
		assert.Equal(t, result.Transcript.Meta.HTMLPath, result.Transcript.Meta.Source.HTMLFile)
		assert.Equal(t, "photos", filepath.Base(result.Transcript.Meta.Source.AssetsDir))
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		p := newPreprocessor(t, extracted(150, 20, 21, 90, 140))

		first, err := p.Run(options())
		require.NoError(t, err)
		second, err := p.Run(options())
		require.NoError(t, err)

		a, err := orderedmap.Artifacts(first)
		require.NoError(t, err)
		b, err := orderedmap.Artifacts(second)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("reports lint failure through the exit code", func(t *testing.T) {
		t.Parallel()

		result, err := newPreprocessor(t, extracted(5, 2)).Run(options())

		require.NoError(t, err)
		assert.False(t, result.Lint.OK)
		assert.Equal(t, tlvc.ExitLintFail, result.ExitCode)
		assert.Equal(t, tlvc.LintTop1LenOutOfRange, result.Lint.Errors[0].Code)
	})

	t.Run("rejects invalid options before touching the input", func(t *testing.T) {
		t.Parallel()

		p := &preprocess.Preprocessor{
			Resolver: &mock.InputResolver{
				ResolveFn: func(path string) (*tlvc.ResolvedInput, error) {
					t.Error("resolver must not be called")
					return nil, nil
				},
			},
		}

		for name, mutate := range map[string]func(*preprocess.Options){
			"k":        func(o *preprocess.Options) { o.K = 0 },
			"episode":  func(o *preprocess.Options) { o.EpisodeID = " " },
			"timezone": func(o *preprocess.Options) { o.Timezone = "Mars/Olympus" },
			"empty tz": func(o *preprocess.Options) { o.Timezone = "" },
		} {
			opts := options()
			mutate(&opts)

			result, err := p.Run(opts)

			assert.Nil(t, result, name)
			assert.Equal(t, tlvc.EINVALID, tlvc.ErrorCode(err), name)
		}
	})

	t.Run("passes resolver errors through", func(t *testing.T) {
		t.Parallel()

		p := newPreprocessor(t, nil)
		p.Resolver = &mock.InputResolver{
			ResolveFn: func(path string) (*tlvc.ResolvedInput, error) {
				return nil, tlvc.Errorf(tlvc.ENOHTML, "no html document in %s", path)
			},
		}

		result, err := p.Run(options())

		assert.Nil(t, result)
		assert.Equal(t, tlvc.ENOHTML, tlvc.ErrorCode(err))
	})

	t.Run("passes profile errors through", func(t *testing.T) {
		t.Parallel()

		p := newPreprocessor(t, nil)
		p.Profiles = &mock.ProfileLoader{
			LoadProfileFn: func(path string) (*tlvc.Profile, error) {
				return nil, tlvc.Errorf(tlvc.EINVALID, "message section required")
			},
		}

		_, err := p.Run(options())

		assert.Equal(t, tlvc.EINVALID, tlvc.ErrorCode(err))
	})
}

func TestPreprocessor_Doctor(t *testing.T) {
	t.Parallel()

	t.Run("reports sample quality and trigger counts", func(t *testing.T) {
		t.Parallel()

		msgs := extracted(30, 2, 25)
		msgs[0].RawTimestampText = ""
		msgs[0].Timestamp = ""
		msgs[1].RawSender = "someone"
		msgs[1].Sender = tlvc.SenderUnknown
		msgs[4].Text = "please approve the curl call"

		r, err := newPreprocessor(t, msgs).Doctor(options())

		require.NoError(t, err)
		assert.Equal(t, 30, r.TotalMessages)
		assert.Equal(t, preprocess.DoctorSampleSize, r.Sample.Size)
		assert.Equal(t, 1, r.Sample.MissingTS)
		assert.Equal(t, 1, r.Sample.UnknownSender)
		assert.Equal(t, 0, r.Sample.EmptyText)
		assert.Equal(t, 2, r.Triggers.Error)
		assert.Equal(t, 1, r.Triggers.Permission)
		assert.Equal(t, 1, r.Triggers.Action)
		assert.Equal(t, tlvc.ModeError, r.Mode)
		assert.Equal(t, tlvc.FormatTelegram, r.Format)
		assert.Equal(t, "test", r.ProfileName)
		assert.Equal(t, 3, r.ProfileVersion)
		assert.Len(t, r.Fingerprint, 16)
		assert.Equal(t, 30, r.Extraction.ContainerMatches)
	})

	t.Run("plans fallback without error triggers", func(t *testing.T) {
		t.Parallel()

		r, err := newPreprocessor(t, extracted(5)).Doctor(options())

		require.NoError(t, err)
		assert.Equal(t, 5, r.Sample.Size)
		assert.Equal(t, tlvc.ModeFallback, r.Mode)
	})

	t.Run("does not need k or an episode id", func(t *testing.T) {
		t.Parallel()

		opts := options()
		opts.K = 0
		opts.EpisodeID = ""

		_, err := newPreprocessor(t, extracted(3)).Doctor(opts)

		assert.NoError(t, err)
	})
}
