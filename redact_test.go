package tlvc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yzsnstotz/tlvc"
)

func TestRedactText(t *testing.T) {
	t.Parallel()

	t.Run("masks a generic token", func(t *testing.T) {
		t.Parallel()

		got, hits := tlvc.RedactText("use token=abcdef0123456789ABCD now")

		assert.Equal(t, "use *** now", got)
		assert.Equal(t, map[string]int{"token.generic": 1}, hits)
	})

	t.Run("masks each pattern and counts every match", func(t *testing.T) {
		t.Parallel()

		got, hits := tlvc.RedactText("Authorization: Bearer abc.def mail a.b@example.com or c@example.org from 10.0.0.1 in /Users/yz/project")

		assert.Equal(t, "*** mail *** or *** from *** in ***", got)
		assert.Equal(t, 1, hits["auth.bearer"])
		assert.Equal(t, 2, hits["contact.email"])
		assert.Equal(t, 1, hits["network.ip"])
		assert.Equal(t, 1, hits["path.unix"])
		assert.NotContains(t, hits, "contact.phone")
	})

	t.Run("leaves short tokens alone", func(t *testing.T) {
		t.Parallel()

		got, hits := tlvc.RedactText("token=short")

		assert.Equal(t, "token=short", got)
		assert.Empty(t, hits)
	})
}

func TestRedactPatterns_Order(t *testing.T) {
	t.Parallel()

	var ids []string
	for _, p := range tlvc.RedactPatterns() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{
		"auth.bearer", "auth.api_key", "token.generic", "path.unix",
		"path.home", "network.ip", "contact.email", "contact.phone",
	}, ids)
}

func TestScanResiduals(t *testing.T) {
	t.Parallel()

	t.Run("reports matches without replacing", func(t *testing.T) {
		t.Parallel()

		got := tlvc.ScanResiduals("m000003", "reach me at a@b.io")

		require.Len(t, got, 1)
		assert.Equal(t, "contact.email", got[0].RuleID)
		assert.Equal(t, "m000003", got[0].MessageID)
		assert.Equal(t, "a@b.io", got[0].Snippet)
	})

	t.Run("truncates long snippets", func(t *testing.T) {
		t.Parallel()

		got := tlvc.ScanResiduals("m000001", "~/"+strings.Repeat("a", 200))

		require.Len(t, got, 1)
		assert.Len(t, got[0].Snippet, tlvc.ResidualSnippetLimit)
	})
}

func TestRedactMessages(t *testing.T) {
	t.Parallel()

	t.Run("returns sanitized copies and totals", func(t *testing.T) {
		t.Parallel()

		in := []tlvc.Message{
			{ID: "m000001", Text: "token=abcdef0123456789ABCD"},
			{ID: "m000002", Text: "X-API-Key: secret123 and ~/notes.txt"},
			{ID: "m000003", Text: "nothing here"},
		}

		out, redaction, residuals := tlvc.RedactMessages(in)

		require.Len(t, out, 3)
		assert.Equal(t, "***", out[0].Text)
		assert.Equal(t, "*** and ***", out[1].Text)
		assert.Equal(t, "nothing here", out[2].Text)
		assert.Equal(t, "token=abcdef0123456789ABCD", in[0].Text)
		assert.Equal(t, 3, redaction.TotalHits)
		assert.Equal(t, map[string]int{"token.generic": 1, "auth.api_key": 1, "path.home": 1}, redaction.HitsByRule)
		assert.Empty(t, residuals)
	})

	t.Run("rescan of sanitized output is clean", func(t *testing.T) {
		t.Parallel()

		in := []tlvc.Message{
			{ID: "m000001", Text: "call +81 90-1234-5678 or mail ops@example.co.jp"},
			{ID: "m000002", Text: "curl -H 'Authorization: Bearer eyJhbGciOi' http://192.168.1.20/api"},
		}

		out, _, residuals := tlvc.RedactMessages(in)

		assert.Empty(t, residuals)
		for _, m := range out {
			assert.Empty(t, tlvc.ScanResiduals(m.ID, m.Text))
		}
	})

	t.Run("keeps hitsByRule non-nil when nothing matched", func(t *testing.T) {
		t.Parallel()

		_, redaction, _ := tlvc.RedactMessages([]tlvc.Message{{ID: "m000001", Text: "hello"}})

		assert.NotNil(t, redaction.HitsByRule)
		assert.Zero(t, redaction.TotalHits)
	})
}
