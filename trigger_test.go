package tlvc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yzsnstotz/tlvc"
)

func TestMatchErrorTriggers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"error.401"}, tlvc.MatchErrorTriggers("got 401 Unauthorized"))
	assert.Equal(t, []string{"error.cors", "error.timeout"}, tlvc.MatchErrorTriggers("cross-origin request timed out"))
	assert.Equal(t, []string{"error.invalid_config"}, tlvc.MatchErrorTriggers("Invalid configuration file"))
	assert.Empty(t, tlvc.MatchErrorTriggers("all good"))
}

func TestMatchTriggers(t *testing.T) {
	t.Parallel()

	got := tlvc.MatchTriggers("please approve: curl -H 'x: y' returned 404")

	var ids []string
	for _, tr := range got {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{"error.404", "perm.approve", "action.curl", "action.header"}, ids)
}

func TestTriggers_Categories(t *testing.T) {
	t.Parallel()

	counts := map[tlvc.TriggerCategory]int{}
	for _, tr := range tlvc.Triggers() {
		counts[tr.Category]++
	}
	assert.Equal(t, 6, counts[tlvc.CategoryError])
	assert.Equal(t, 4, counts[tlvc.CategoryPermission])
	assert.Equal(t, 7, counts[tlvc.CategoryAction])
	assert.Len(t, tlvc.ErrorTriggers(), 6)
}

func TestHasErrorTrigger(t *testing.T) {
	t.Parallel()

	assert.True(t, tlvc.HasErrorTrigger("connection TIMEOUT"))
	assert.False(t, tlvc.HasErrorTrigger("connection fine"))
}
