package docparser

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeDocument returns an export's content as UTF-8 text. The BDPM
// exports mix UTF-8 and ISO-8859-1 files, so anything that is not valid
// UTF-8 is decoded as ISO-8859-1.
func DecodeDocument(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode ISO-8859-1 content: %w", err)
	}
	return string(decoded), nil
}

// Source provides raw document markup by filename.
type Source interface {
	Load(filename string) (string, error)
}

// DirSource loads document exports from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Load(filename string) (string, error) {
	path := filepath.Join(s.Dir, filepath.Base(filename))
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeDocument(raw)
}

// List returns the filenames under the directory starting with the given
// prefix and ending in .htm, sorted for stable batch order.
func (s DirSource) List(prefix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, prefix+"*.htm"))
	if err != nil {
		return nil, fmt.Errorf("failed to list documents in %s: %w", s.Dir, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

// Compile-time check that DirSource implements Source
var _ Source = DirSource{}
