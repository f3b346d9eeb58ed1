package corpus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowledge-engine/ayahfinder/internal/corpus"
)

func testCatalog(t *testing.T) *corpus.Catalog {
	t.Helper()

	external, err := corpus.DecodeSurahMeta([]byte(`[
		{"number": 1, "name_ar": "الفاتحة", "englishName": "Al-Faatiha"},
		{"number": 2, "name": "سُورَةُ البَقَرَةِ", "englishName": "Al-Baqara"},
		{"number": 36, "name_ar": "يس", "englishName": "Yaseen"},
		{"number": 0, "name_ar": "ignored"}
	]`))
	require.NoError(t, err)
	require.Len(t, external, 3)

	base := []corpus.SurahMeta{{Number: 1}, {Number: 2, Name: "البقرة"}, {Number: 36}, {Number: 114}}
	return corpus.NewCatalog(base, external)
}

func TestDecodeSurahMetaWrapped(t *testing.T) {
	metas, err := corpus.DecodeSurahMeta([]byte(`{"data":[{"number":"3","name":"آل عمران"}]}`))
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.Equal(t, 3, metas[0].Number)
	assert.Equal(t, "آل عمران", metas[0].Name)

	_, err = corpus.DecodeSurahMeta([]byte(`"nope"`))
	assert.Error(t, err)
}

func TestCatalogName(t *testing.T) {
	c := testCatalog(t)

	assert.Equal(t, "الفاتحة", c.Name(1))
	assert.Equal(t, "سُورَةُ البَقَرَةِ", c.Name(2))
	assert.Equal(t, "سورة 114", c.Name(114))
	assert.Equal(t, "سورة 200", c.Name(200))
	assert.Len(t, c.All(), 4)
}

func TestCatalogResolve(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name     string
		query    string
		expected int
	}{
		{"Number", "36", 36},
		{"Arabic exact", "الفاتحة", 1},
		{"Arabic with surah prefix and marks", "سورة البَقَرة", 2},
		{"English", "al-baqara", 2},
		{"English typo", "Al Fatiha", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, score, ok := c.Resolve(tt.query)
			require.True(t, ok, "score %f", score)
			assert.Equal(t, tt.expected, m.Number)
		})
	}
}

func TestCatalogResolveMiss(t *testing.T) {
	c := testCatalog(t)

	_, _, ok := c.Resolve("")
	assert.False(t, ok)
	_, _, ok = c.Resolve("999")
	assert.False(t, ok)
	_, _, ok = c.Resolve("zzzzqqqq")
	assert.False(t, ok)
}
