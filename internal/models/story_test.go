package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidGenre(t *testing.T) {
	for _, g := range Genres {
		assert.True(t, ValidGenre(g), g)
	}

	assert.False(t, ValidGenre("fantasy")) // case matters
	assert.False(t, ValidGenre("Western"))
	assert.False(t, ValidGenre(""))
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"Empty", "", 0},
		{"Whitespace Only", "   \n\t ", 0},
		{"Simple", "one two three", 3},
		{"Irregular Spacing", "  one\n\ntwo\tthree  ", 3},
		{"Punctuation Sticks To Words", "Hello, world! How are you?", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.text))
		})
	}
}

func TestTagListRoundTrip(t *testing.T) {
	tags := TagList{"dragons", "quests"}

	value, err := tags.Value()
	require.NoError(t, err)

	var decoded TagList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, tags, decoded)
}

func TestTagListScanLenient(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want TagList
	}{
		{"Nil", nil, nil},
		{"Empty String", "", nil},
		{"Garbage Scans Empty", "not-json", nil},
		{"Bytes", []byte(`["a","b"]`), TagList{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags TagList
			require.NoError(t, tags.Scan(tt.src))
			assert.Equal(t, tt.want, tags)
		})
	}
}

func TestTagListEmptyValueIsNull(t *testing.T) {
	var tags TagList
	value, err := tags.Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestExportFilename(t *testing.T) {
	s := &Story{Title: "The Last Signal"}
	assert.Equal(t, "The_Last_Signal.md", s.ExportFilename())

	s = &Story{Title: "OneWord"}
	assert.Equal(t, "OneWord.md", s.ExportFilename())
}
