package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectClause(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     string
	}{
		{
			name:     "clause keyword",
			question: "What does clause 4.2 say about termination?",
			want:     "4.2",
		},
		{
			name:     "capitalized clause keyword",
			question: "Clause 3.1.5 details please",
			want:     "3.1.5",
		},
		{
			name:     "section keyword",
			question: "summarize section 2.10 for me",
			want:     "2.10",
		},
		{
			name:     "keyword with colon",
			question: "Section: 7.2",
			want:     "7.2",
		},
		{
			name:     "bare dotted reference",
			question: "what is 5.1 about?",
			want:     "5.1",
		},
		{
			name:     "first of several references",
			question: "compare 4.2 and 5.1",
			want:     "4.2",
		},
		{
			name:     "no reference",
			question: "What is the grace period?",
			want:     "",
		},
		{
			name:     "plain integer is not a clause",
			question: "is notice required after 30 days?",
			want:     "",
		},
		{
			name:     "empty question",
			question: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectClause(tt.question))
		})
	}
}
