package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Manifest lists the datasets to load. Locations are file names relative to
// the data directory or http(s) URLs.
type Manifest struct {
	Corpus      string             `toml:"corpus"`
	Surahs      string             `toml:"surahs"`
	Translation string             `toml:"translation"`
	Commentary  []CommentarySource `toml:"commentary"`
}

// CommentarySource describes one tafsir dataset.
type CommentarySource struct {
	ID          string `toml:"id"`
	Label       string `toml:"label"`
	Location    string `toml:"location"`
	StripMarkup bool   `toml:"strip_markup"`
}

// DefaultManifest is used when no manifest file exists.
func DefaultManifest() *Manifest {
	return &Manifest{
		Corpus:      "quran.json",
		Surahs:      "surahs.json",
		Translation: "en.sahih.json",
		Commentary: []CommentarySource{
			{ID: "muyassar", Label: "التفسير الميسّر", Location: "tafseer_muyassar.json"},
			{ID: "saadi", Label: "تفسير السعدي", Location: "tafseer_saadi.json"},
			{ID: "tabari", Label: "تفسير الطبري", Location: "tafseer_tabari.json"},
			{ID: "ibn_kathir", Label: "تفسير ابن كثير", Location: "tafseer_ibn_kathir.json"},
			{ID: "qurtubi", Label: "تفسير القرطبي", Location: "tafseer_qurtubi.json"},
			{ID: "baghawi", Label: "تفسير البغوي", Location: "tafseer_baghawi.json"},
			{ID: "ibn_ashur", Label: "تفسير ابن عاشور", Location: "tafseer_ibn_ashur.json"},
		},
	}
}

// LoadManifest reads a TOML manifest. A missing file yields DefaultManifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates manifest content.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the corpus is set and commentary ids are unique.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Corpus) == "" {
		return errors.New("manifest: corpus location is required")
	}

	seen := make(map[string]bool, len(m.Commentary))
	for i, src := range m.Commentary {
		if src.ID == "" || src.Location == "" {
			return fmt.Errorf("manifest: commentary entry %d needs id and location", i)
		}
		if seen[src.ID] {
			return fmt.Errorf("manifest: duplicate commentary id %q", src.ID)
		}
		seen[src.ID] = true
		if src.Label == "" {
			m.Commentary[i].Label = src.ID
		}
	}
	return nil
}

// Locations returns every dataset location in the manifest.
func (m *Manifest) Locations() []string {
	var out []string
	for _, loc := range []string{m.Corpus, m.Surahs, m.Translation} {
		if loc != "" {
			out = append(out, loc)
		}
	}
	for _, src := range m.Commentary {
		out = append(out, src.Location)
	}
	return out
}
