package translation_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/ayahfinder/internal/corpus"
	"github.com/knowledge-engine/ayahfinder/internal/translation"
)

// testIndex builds two surahs with 3 and 2 verses.
func testIndex(t *testing.T) *corpus.Index {
	t.Helper()

	idx, err := corpus.Build(&corpus.Corpus{Surahs: []corpus.Surah{
		{Number: 1, Ayahs: []corpus.Ayah{{Text: "ا"}, {Text: "ب"}, {Text: "ت"}}},
		{Number: 2, Ayahs: []corpus.Ayah{{Text: "ث"}, {Text: "ج"}}},
	}})
	require.NoError(t, err)
	return idx
}

func rows(t *testing.T, n int) any {
	t.Helper()

	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf(" verse %d ", i+1)
	}
	data, err := json.Marshal(texts)
	require.NoError(t, err)

	var raw any
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestAlignExact(t *testing.T) {
	m, ok := translation.Align(rows(t, 5), testIndex(t))
	require.True(t, ok)
	assert.Equal(t, 5, m.Len())
	assert.Equal(t, 5, m.Filled())

	text, ok := m.Lookup(1, 3)
	assert.True(t, ok)
	assert.Equal(t, "verse 3", text)

	text, _ = m.Lookup(2, 1)
	assert.Equal(t, "verse 4", text)
}

func TestAlignShorterPadsWithEmpty(t *testing.T) {
	m, ok := translation.Align(rows(t, 4), testIndex(t))
	require.True(t, ok)
	assert.Equal(t, 5, m.Len())
	assert.Equal(t, 4, m.Filled())

	text, covered := m.Lookup(2, 2)
	assert.True(t, covered)
	assert.Equal(t, "", text)
}

func TestAlignLongerIsTruncated(t *testing.T) {
	m, ok := translation.Align(rows(t, 10), testIndex(t))
	require.True(t, ok)
	assert.Equal(t, 5, m.Len())

	text, _ := m.Lookup(2, 2)
	assert.Equal(t, "verse 5", text)

	_, covered := m.Lookup(2, 3)
	assert.False(t, covered)
}

func TestAlignRecords(t *testing.T) {
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`[
		{"index": 1, "text": "In the name of Allah"},
		{"index": 2, "text": null},
		{"index": 3},
		"plain",
		7
	]`), &raw))

	m, ok := translation.Align(raw, testIndex(t))
	require.True(t, ok)

	expected := map[[2]int]string{
		{1, 1}: "In the name of Allah",
		{1, 2}: "",
		{1, 3}: "",
		{2, 1}: "plain",
		{2, 2}: "7",
	}
	for key, want := range expected {
		got, covered := m.Lookup(key[0], key[1])
		assert.True(t, covered)
		assert.Equal(t, want, got, "verse %v", key)
	}
}

func TestAlignRejectsNonSequence(t *testing.T) {
	idx := testIndex(t)

	for _, raw := range []any{nil, "text", map[string]any{"1": "x"}} {
		m, ok := translation.Align(raw, idx)
		assert.False(t, ok)
		assert.Nil(t, m)
	}

	_, ok := translation.Align([]any{}, nil)
	assert.False(t, ok)
}

func TestNilMap(t *testing.T) {
	var m *translation.Map
	_, ok := m.Lookup(1, 1)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, m.Filled())
}
