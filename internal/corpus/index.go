package corpus

// SurahMeta is read-only reference data for one surah.
type SurahMeta struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name,omitempty"`
}

type span struct {
	offset int
	count  int
}

// Index is the ordered list of verse records: ascending surah, then ascending
// ayah. Translation alignment depends on this exact order.
type Index struct {
	records []VerseRecord
	surahs  []SurahMeta
	bySurah map[int]span
}

// Records returns the records in canonical order. The slice must not be modified.
func (ix *Index) Records() []VerseRecord {
	return ix.records
}

// Len returns the total number of verses.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Surahs lists the surahs found in the corpus in ascending order.
func (ix *Index) Surahs() []SurahMeta {
	out := make([]SurahMeta, len(ix.surahs))
	copy(out, ix.surahs)
	return out
}

// VerseCount returns the number of verses in surah, or 0 when unknown.
func (ix *Index) VerseCount(surah int) int {
	return ix.bySurah[surah].count
}

// Verse looks up a single record.
func (ix *Index) Verse(surah, ayah int) (VerseRecord, bool) {
	sp, ok := ix.bySurah[surah]
	if !ok || ayah < 1 {
		return VerseRecord{}, false
	}

	// Gapless corpora resolve directly; otherwise scan the surah block.
	if ayah <= sp.count {
		if rec := ix.records[sp.offset+ayah-1]; rec.Ayah == ayah {
			return rec, true
		}
	}
	for _, rec := range ix.records[sp.offset : sp.offset+sp.count] {
		if rec.Ayah == ayah {
			return rec, true
		}
	}
	return VerseRecord{}, false
}

// Range returns the records of surah with start <= ayah <= end.
func (ix *Index) Range(surah, start, end int) []VerseRecord {
	sp, ok := ix.bySurah[surah]
	if !ok {
		return nil
	}

	var out []VerseRecord
	for _, rec := range ix.records[sp.offset : sp.offset+sp.count] {
		if rec.Ayah >= start && rec.Ayah <= end {
			out = append(out, rec)
		}
	}
	return out
}
