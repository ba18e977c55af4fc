// Package media holds the per-category sheet schema and the record model
// shared by the reconciliation engine and the table store.
package media

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeSeries     Type = "series"
	TypeMovie      Type = "movie"
	TypeAnime      Type = "anime"
	TypeAnimeMovie Type = "anime_movie"
)

// Standalone is the franchise sentinel for titles that belong to no collection.
const Standalone = "Standalone"

// ReleaseDateFormat is the date layout used by TMDB and stored in the sheet.
const ReleaseDateFormat = "2006-01-02"

var ErrUnknownType = errors.New("unknown media type")

// ParseType validates a user-supplied category string.
func ParseType(s string) (Type, error) {
	t := Type(s)
	switch t {
	case TypeSeries, TypeMovie, TypeAnime, TypeAnimeMovie:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// IsMovie reports whether the category is binary watched/unwatched rather
// than episodic.
func (t Type) IsMovie() bool {
	return t == TypeMovie || t == TypeAnimeMovie
}

// Config describes where a category lives in the spreadsheet and the order
// its columns are written in. The name column is always first.
type Config struct {
	SheetName string
	Range     string
	Columns   []string
}

var configs = map[Type]Config{
	TypeSeries: {
		SheetName: "Series",
		Range:     "Series!A:H",
		Columns:   []string{"series_name", "series_status", "watched_till", "next_season", "expected_on", "update", "watched", "release_date"},
	},
	TypeMovie: {
		SheetName: "Movies",
		Range:     "Movies!A:H",
		Columns:   []string{"movies_name", "franchise", "watched_till", "next_part", "expected_on", "update", "watched", "release_date"},
	},
	TypeAnime: {
		SheetName: "Anime",
		Range:     "Anime!A:H",
		Columns:   []string{"anime_name", "series_status", "watched_till", "next_season", "expected_on", "update", "watched", "release_date"},
	},
	TypeAnimeMovie: {
		SheetName: "Anime Movies",
		Range:     "Anime Movies!A:H",
		Columns:   []string{"movies_name", "franchise", "watched_till", "next_part", "expected_on", "update", "watched", "release_date"},
	},
}

// ConfigFor returns the sheet configuration for a category. The returned
// value is a copy; the table itself is never mutated after process start.
func ConfigFor(t Type) (Config, bool) {
	c, ok := configs[t]
	return c, ok
}

// NameColumn is the column holding the canonical title for this category.
func (c Config) NameColumn() string {
	return c.Columns[0]
}

// ColumnIndex returns the position of a column in the sheet, or -1.
func (c Config) ColumnIndex(name string) int {
	for i, col := range c.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// CellAddress builds an A1-notation address for a single cell given a column
// name and a 1-based sheet row index.
func (c Config) CellAddress(column string, rowIndex int) (string, error) {
	i := c.ColumnIndex(column)
	if i < 0 {
		return "", fmt.Errorf("column %q not in sheet %q", column, c.SheetName)
	}
	return fmt.Sprintf("%s!%s%d", c.SheetName, ColumnLetter(i), rowIndex), nil
}

// RowRange builds an A1-notation range addressing a whole row.
func (c Config) RowRange(rowIndex int) string {
	return fmt.Sprintf("%s!A%d", c.SheetName, rowIndex)
}

// ColumnLetter converts a zero-based column offset into its sheet letter.
// Categories here never exceed column Z.
func ColumnLetter(i int) string {
	return string(rune('A' + i))
}

// FormatWatched serializes the watched flag the way the sheet stores it.
func FormatWatched(watched bool) string {
	if watched {
		return "True"
	}
	return "False"
}

// ParseWatched reads a sheet-style watched flag.
func ParseWatched(s string) bool {
	return strings.EqualFold(s, "true")
}

// FranchiseName derives the display name of a franchise from a TMDB
// collection name by stripping the trailing " Collection" suffix.
func FranchiseName(collectionName string) string {
	name := strings.TrimSpace(collectionName)
	const suffix = " collection"
	if len(name) >= len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		name = strings.TrimSpace(name[:len(name)-len(suffix)])
	}
	if name == "" {
		return Standalone
	}
	return name
}

// Availability reports whether a title with the given release date can
// already be watched. Unparseable or absent dates count as unavailable.
func Availability(releaseDate string, now time.Time) string {
	d, err := time.Parse(ReleaseDateFormat, releaseDate)
	if err != nil {
		return "N/A"
	}
	if d.After(now) {
		return "N/A"
	}
	return "Available"
}

// Fields are the oracle-synthesized portions of a record. Status values are
// already normalized by the synthesizer.
type Fields struct {
	SeriesStatus string
	NextSeason   string
	NextPart     string
	ExpectedOn   string
}

// Record is a storage-ready row keyed by column name.
type Record map[string]string

// BuildRecord merges synthesized fields with facts taken from metadata
// (franchise, release date) and the user's form input into a record for the
// primary title being added.
func BuildRecord(t Type, name string, f Fields, franchise, releaseDate, watchedTill string, watched bool, now time.Time) Record {
	cfg := configs[t]

	rec := Record{
		cfg.NameColumn(): name,
		"expected_on":    orDefault(f.ExpectedOn, "N/A"),
		"update":         now.UTC().Format(time.RFC3339),
		"watched":        FormatWatched(watched),
		"release_date":   releaseDate,
	}

	if t.IsMovie() {
		rec["franchise"] = franchise
		rec["next_part"] = orDefault(f.NextPart, "Yes")
		if watched {
			rec["watched_till"] = "Watched"
		} else {
			rec["watched_till"] = "Not Watched"
		}
	} else {
		rec["series_status"] = orDefault(f.SeriesStatus, "On Going")
		rec["next_season"] = orDefault(f.NextSeason, "Yes")
		rec["watched_till"] = watchedTill
	}

	return rec
}

// SiblingRecord builds a row for an unwatched franchise member discovered
// during background population. The franchise value is copied from the
// primary record so every row in one population run carries the same
// grouping key.
func SiblingRecord(t Type, title, franchise, releaseDate string, now time.Time) Record {
	cfg := configs[t]

	return Record{
		cfg.NameColumn(): title,
		"franchise":      franchise,
		"watched_till":   "Not Watched",
		"next_part":      "Yes",
		"expected_on":    Availability(releaseDate, now),
		"update":         now.UTC().Format(time.RFC3339),
		"watched":        FormatWatched(false),
		"release_date":   orDefault(releaseDate, "N/A"),
	}
}

// ToRow projects a record into the column order declared for the category,
// substituting the empty string for missing fields. Sheet cells are always
// strings.
func ToRow(cfg Config, rec Record) []string {
	row := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		row[i] = rec[col]
	}
	return row
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
