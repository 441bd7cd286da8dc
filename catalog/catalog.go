// Package catalog loads the movie metadata table that recommendations are
// computed from.
package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hubenschmidt/reelmatch/core"
)

// Required columns. Any other column in the dataset is ignored.
const (
	ColumnTitle    = "title"
	ColumnGenres   = "genres"
	ColumnKeywords = "keywords"
	ColumnTagline  = "tagline"
	ColumnCast     = "cast"
	ColumnDirector = "director"
)

var requiredColumns = []string{
	ColumnTitle, ColumnGenres, ColumnKeywords, ColumnTagline, ColumnCast, ColumnDirector,
}

// Movie is one catalog row. Title is lowercased; missing cells are "".
type Movie struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	Genres   string `json:"genres"`
	Keywords string `json:"keywords"`
	Tagline  string `json:"tagline"`
	Cast     string `json:"cast"`
	Director string `json:"director"`
}

type Catalog struct {
	Movies []Movie
	// Fingerprint is the hex SHA-256 of the raw dataset.
	Fingerprint string

	firstIndex map[string]int
	titles     []string
}

// New builds a catalog from already-normalized rows. Movie.Index is reassigned
// to the slice position.
func New(movies []Movie, fingerprint string) *Catalog {
	c := &Catalog{
		Movies:      movies,
		Fingerprint: fingerprint,
		firstIndex:  make(map[string]int, len(movies)),
	}
	for i := range c.Movies {
		c.Movies[i].Index = i
		title := c.Movies[i].Title
		if title == "" {
			continue
		}
		if _, seen := c.firstIndex[title]; !seen {
			c.firstIndex[title] = i
			c.titles = append(c.titles, title)
		}
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.Movies)
}

// IndexOf returns the first row whose title equals title (already lowercased).
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.firstIndex[title]
	return i, ok
}

// Titles returns the distinct non-empty titles in order of first appearance.
func (c *Catalog) Titles() []string {
	return c.titles
}

// Parse reads a CSV dataset with a header row.
func Parse(data []byte) (*Catalog, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.NewError("catalog.parse", core.ErrEmptyCatalog)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	var movies []Movie
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(movies)+1, err)
		}
		movies = append(movies, Movie{
			Title:    strings.ToLower(strings.TrimSpace(field(rec, cols[ColumnTitle]))),
			Genres:   field(rec, cols[ColumnGenres]),
			Keywords: field(rec, cols[ColumnKeywords]),
			Tagline:  field(rec, cols[ColumnTagline]),
			Cast:     field(rec, cols[ColumnCast]),
			Director: field(rec, cols[ColumnDirector]),
		})
	}

	if len(movies) == 0 {
		return nil, core.NewError("catalog.parse", core.ErrEmptyCatalog)
	}

	sum := sha256.Sum256(data)
	return New(movies, hex.EncodeToString(sum[:])), nil
}

func columnIndexes(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, want := range requiredColumns {
		if _, ok := cols[want]; !ok {
			return nil, core.WithContext(core.NewError("catalog.parse", core.ErrMissingColumn), "column", want)
		}
	}
	return cols, nil
}

// field tolerates short rows: a missing cell is an empty value.
func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}
