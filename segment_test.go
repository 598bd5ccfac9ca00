package tlvc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yzsnstotz/tlvc"
)

// transcript builds n plain messages; errs lists indices whose text carries
// an error trigger.
func transcript(n int, errs ...int) []tlvc.Message {
	msgs := make([]tlvc.Message, n)
	for i := range msgs {
		msgs[i] = tlvc.Message{ID: tlvc.MessageID(i + 1), Sender: tlvc.SenderLeo, Text: "ok"}
	}
	for _, i := range errs {
		msgs[i].Text = "401 Unauthorized"
	}
	return msgs
}

func TestSegmentMessages(t *testing.T) {
	t.Parallel()

	t.Run("opens a window around a single error", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(200, 50))

		require.Len(t, seg.Segments, 1)
		s := seg.Segments[0]
		assert.False(t, seg.Fallback)
		assert.Equal(t, tlvc.ModeError, seg.Mode())
		assert.Equal(t, "s001", s.ID)
		assert.Equal(t, 44, s.StartIndex)
		assert.Equal(t, 62, s.EndIndex)
		assert.Equal(t, 19, s.Len())
		assert.Equal(t, "m000045", s.MessageIDs[0])
		assert.Equal(t, []tlvc.TriggerHit{{TriggerID: "error.401", Category: tlvc.CategoryError, MessageIndex: 50}}, s.TriggerHits)
	})

	t.Run("keeps distant windows apart", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(200, 10, 30))

		require.Len(t, seg.Segments, 2)
		assert.Equal(t, [2]int{4, 22}, [2]int{seg.Segments[0].StartIndex, seg.Segments[0].EndIndex})
		assert.Equal(t, [2]int{24, 42}, [2]int{seg.Segments[1].StartIndex, seg.Segments[1].EndIndex})
		assert.Equal(t, "s002", seg.Segments[1].ID)
	})

	t.Run("merges adjacent windows", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(200, 10, 29))

		require.Len(t, seg.Segments, 1)
		assert.Equal(t, 4, seg.Segments[0].StartIndex)
		assert.Equal(t, 41, seg.Segments[0].EndIndex)
		assert.Len(t, seg.Segments[0].TriggerHits, 2)
	})

	t.Run("grows short windows backward first", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(12, 11))

		require.Len(t, seg.Segments, 1)
		assert.Equal(t, 2, seg.Segments[0].StartIndex)
		assert.Equal(t, 11, seg.Segments[0].EndIndex)
		assert.Equal(t, tlvc.SegmentMinLen, seg.Segments[0].Len())
	})

	t.Run("stops growing at transcript bounds", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(5, 2))

		require.Len(t, seg.Segments, 1)
		assert.Equal(t, 5, seg.Segments[0].Len())
	})

	t.Run("cuts long ranges to the densest window", func(t *testing.T) {
		t.Parallel()

		errs := []int{0, 18, 36, 54, 72, 90}
		for i := 80; i < 90; i++ {
			errs = append(errs, i)
		}

		seg := tlvc.SegmentMessages(transcript(100, errs...))

		require.Len(t, seg.Segments, 1)
		assert.Equal(t, 31, seg.Segments[0].StartIndex)
		assert.Equal(t, 90, seg.Segments[0].EndIndex)
		assert.Equal(t, tlvc.SegmentMaxLen, seg.Segments[0].Len())
	})

	t.Run("breaks trim ties toward the earliest start", func(t *testing.T) {
		t.Parallel()

		errs := make([]int, 0, 100)
		for i := range 100 {
			errs = append(errs, i)
		}

		seg := tlvc.SegmentMessages(transcript(100, errs...))

		require.Len(t, seg.Segments, 1)
		assert.Equal(t, 0, seg.Segments[0].StartIndex)
		assert.Equal(t, 59, seg.Segments[0].EndIndex)
	})

	t.Run("empty transcript yields no segments", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(nil)

		assert.Empty(t, seg.Segments)
		assert.False(t, seg.Fallback)
	})
}

func TestSegmentMessages_Fallback(t *testing.T) {
	t.Parallel()

	t.Run("short transcript becomes one window", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(30))

		require.Len(t, seg.Segments, 1)
		assert.True(t, seg.Fallback)
		assert.Equal(t, tlvc.ModeFallback, seg.Mode())
		assert.Equal(t, 0, seg.Segments[0].StartIndex)
		assert.Equal(t, 29, seg.Segments[0].EndIndex)
		assert.Empty(t, seg.Segments[0].TriggerHits)
	})

	t.Run("long transcript becomes near-equal slices", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(150))

		require.Len(t, seg.Segments, 3)
		assert.Equal(t, 0, seg.Segments[0].StartIndex)
		assert.Equal(t, 50, seg.Segments[1].StartIndex)
		assert.Equal(t, 149, seg.Segments[2].EndIndex)
	})

	t.Run("slice sizes differ by at most one", func(t *testing.T) {
		t.Parallel()

		seg := tlvc.SegmentMessages(transcript(61))

		require.Len(t, seg.Segments, 2)
		assert.Equal(t, 31, seg.Segments[0].Len())
		assert.Equal(t, 30, seg.Segments[1].Len())
	})
}

func TestSegmentMessages_LengthBounds(t *testing.T) {
	t.Parallel()

	for total := 10; total <= 250; total += 13 {
		for _, errs := range [][]int{
			nil,
			{0},
			{total - 1},
			{total / 2},
			{0, total / 3, total - 1},
		} {
			seg := tlvc.SegmentMessages(transcript(total, errs...))
			require.NotEmpty(t, seg.Segments)
			for _, s := range seg.Segments {
				assert.GreaterOrEqual(t, s.Len(), tlvc.SegmentMinLen, "total=%d errs=%v", total, errs)
				assert.LessOrEqual(t, s.Len(), tlvc.SegmentMaxLen, "total=%d errs=%v", total, errs)
			}
		}
	}
}
