package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		source   string
		contains []string
		absent   []string
	}{
		{
			name:     "heading and emphasis",
			source:   "# Office closed\n\nThe office is **closed** on Friday.",
			contains: []string{"<h1>Office closed</h1>", "<strong>closed</strong>"},
		},
		{
			name:     "gfm table",
			source:   "| day | shift |\n|---|---|\n| Mon | morning |",
			contains: []string{"<table>", "<td>morning</td>"},
		},
		{
			name:   "script stripped",
			source: "hello <script>alert(1)</script>",
			absent: []string{"<script", "alert(1)"},
		},
		{
			name:     "javascript link neutralized",
			source:   "[click](javascript:alert(1))",
			absent:   []string{"javascript:"},
			contains: []string{"click"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := r.Render(tt.source)
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			for _, a := range tt.absent {
				assert.False(t, strings.Contains(out, a), "unexpected %q in %q", a, out)
			}
		})
	}
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "Payday", Plain("<b>Payday</b>"))
}
