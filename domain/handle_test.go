package domain

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestGenerateHandle(t *testing.T) {
	tests := []struct {
		name  string
		id    UserID
		first string
		last  string
		taken []string
		want  string
	}{
		{"free base", 0, "Hayden", "Jacobs", nil, "haydenjacobs"},
		{"long names are truncated", 1, "Bartholomew", "Montgomery-Smith", nil, "bartholomewmontgomer"},
		{"collision appends the id", 3, "Hayden", "Jacobs", []string{"haydenjacobs"}, "haydenjacobs3"},
		{"collision on a full length base", 12, "Bartholomew", "Montgomery", []string{"bartholomewmontgomer"}, "bartholomewmontgom12"},
		{"second collision appends a counter", 3, "Hayden", "Jacobs", []string{"haydenjacobs", "haydenjacobs3"}, "haydenjacobs31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := map[string]bool{}
			for _, h := range tt.taken {
				taken[h] = true
			}
			got := GenerateHandle(tt.id, tt.first, tt.last, func(h string) bool { return taken[h] })
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateHandle_AlwaysUniqueAndBounded(t *testing.T) {
	req := require.New(t)

	taken := map[string]bool{}
	for id := 0; id < 150; id++ {
		h := GenerateHandle(UserID(id), "Maximilianus", "Wolfeschlegelstein", func(h string) bool { return taken[h] })
		req.False(taken[h], "duplicate handle %s", h)
		req.LessOrEqual(utf8.RuneCountInString(h), MaxHandleLength)
		taken[h] = true
	}
}
