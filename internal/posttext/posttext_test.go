package posttext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text is trimmed only",
			in:   "  Three lessons from shipping late.\n\nOne: scope.  ",
			want: "Three lessons from shipping late.\n\nOne: scope.",
		},
		{
			name: "comparison operators are not markup",
			in:   "latency < 5ms and p99 > 20ms",
			want: "latency < 5ms and p99 > 20ms",
		},
		{
			name: "paragraphs and line breaks survive",
			in:   "<p>First line<br>second line</p><p>Next   paragraph</p>",
			want: "First line\nsecond line\n\nNext paragraph",
		},
		{
			name: "scripts and styles are dropped",
			in:   "<div>Hiring now<script>alert(1)</script><style>p{}</style></div>",
			want: "Hiring now",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("<span>hi</span>"))
	assert.True(t, IsHTML("line<br/>break"))
	assert.False(t, IsHTML("a <b"))
	assert.False(t, IsHTML("just words"))
}

func TestAnalyze(t *testing.T) {
	stats, err := Analyze("We shipped the feature today. The team worked hard for this moment.")
	require.NoError(t, err)

	assert.Equal(t, 12, stats.Words)
	assert.Equal(t, 2, stats.Sentences)
	assert.InDelta(t, 6.0, stats.AvgSentenceLength, 0.001)
}

func TestAnalyze_Empty(t *testing.T) {
	stats, err := Analyze("   ")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestFitsLength(t *testing.T) {
	assert.True(t, FitsLength(100, "short"))
	assert.False(t, FitsLength(20, "short"))
	assert.True(t, FitsLength(200, "medium"))
	assert.True(t, FitsLength(300, "long"))
	assert.False(t, FitsLength(100, "epic"))

	lo, hi, ok := LengthTarget("medium")
	require.True(t, ok)
	assert.Equal(t, 150, lo)
	assert.Equal(t, 250, hi)
}
