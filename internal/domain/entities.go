package domain

import (
	"fmt"
	"strings"
	"time"
)

// releaseDateLayout is the date format used by the catalog API
const releaseDateLayout = "2006-01-02"

// MovieRecord is the persisted row for one movie, summary-only or complete.
type MovieRecord struct {
	ID          int     `json:"id"`           // Catalog identifier (auto-assigned when zero on insert)
	Title       string  `json:"title"`        // Display title
	Director    string  `json:"director"`     // Not provided by list fetches
	Rating      float64 `json:"rating"`       // Community rating (0-10 scale)
	ReleaseDate string  `json:"release_date"` // YYYY-MM-DD
	PosterPath  string  `json:"poster_path"`  // Relative image path
	Overview    string  `json:"overview"`     // Plot synopsis
	Status      string  `json:"status"`       // "Released", "Post Production", ...
	Tagline     string  `json:"tagline"`

	// Detail fields, filled in when the details fetch completes
	Genres         string `json:"genres"`          // Comma-joined genre names
	BackdropPath   string `json:"backdrop_path"`   // Relative image path
	RunTime        int    `json:"run_time"`        // Minutes
	DetailsFetched bool   `json:"details_fetched"` // Full details have been merged in
}

// FormattedRuntime returns the runtime in a human-readable format
func (m MovieRecord) FormattedRuntime() string {
	if m.RunTime <= 0 {
		return "Duration not available"
	}
	h := m.RunTime / 60
	mins := m.RunTime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// DisplayReleaseDate returns the release date as "Jan 2, 2006".
// Unparseable dates are returned unchanged.
func (m MovieRecord) DisplayReleaseDate() string {
	t, err := time.Parse(releaseDateLayout, m.ReleaseDate)
	if err != nil {
		return m.ReleaseDate
	}
	return t.Format("Jan 2, 2006")
}

// ReleaseYear returns the release year, or 0 when unknown
func (m MovieRecord) ReleaseYear() int {
	t, err := time.Parse(releaseDateLayout, m.ReleaseDate)
	if err != nil {
		return 0
	}
	return t.Year()
}

// DisplayTitle returns "Title (Year)" when the year is known
func (m MovieRecord) DisplayTitle() string {
	if year := m.ReleaseYear(); year > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, year)
	}
	return m.Title
}

// DetailsUpdate carries the fields merged into a record by a details fetch
type DetailsUpdate struct {
	Status         string
	BackdropPath   string
	DetailsFetched bool
	Genres         string
	RunTime        int
}

// Apply merges the update into a copy of the record
func (u DetailsUpdate) Apply(rec MovieRecord) MovieRecord {
	rec.Status = u.Status
	rec.BackdropPath = u.BackdropPath
	rec.DetailsFetched = u.DetailsFetched
	rec.Genres = u.Genres
	rec.RunTime = u.RunTime
	return rec
}

// MovieSummary is one entry of a movie list response
type MovieSummary struct {
	ID           int
	Title        string
	Overview     string
	PosterPath   string
	BackdropPath string
	ReleaseDate  string
	Rating       float64
}

// Record builds a summary-only record from a list entry
func (s MovieSummary) Record() MovieRecord {
	return MovieRecord{
		ID:           s.ID,
		Title:        s.Title,
		Rating:       s.Rating,
		ReleaseDate:  s.ReleaseDate,
		PosterPath:   s.PosterPath,
		Overview:     s.Overview,
		BackdropPath: s.BackdropPath,
	}
}

// MoviePage is one page of a movie list response
type MoviePage struct {
	Page         int
	TotalPages   int
	TotalResults int
	Movies       []MovieSummary
}

// Genre is a catalog genre
type Genre struct {
	ID   int
	Name string
}

// MovieDetails is the detail response for a single movie
type MovieDetails struct {
	ID           int
	Title        string
	Overview     string
	Status       string
	Tagline      string
	BackdropPath string
	PosterPath   string
	ReleaseDate  string
	Rating       float64
	RunTime      int
	Genres       []Genre
}

// GenreNames joins the genre names with ", "
func (d MovieDetails) GenreNames() string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// Update returns the detail fields to merge into an existing record
func (d MovieDetails) Update() DetailsUpdate {
	return DetailsUpdate{
		Status:         d.Status,
		BackdropPath:   d.BackdropPath,
		DetailsFetched: true,
		Genres:         d.GenreNames(),
		RunTime:        d.RunTime,
	}
}

// Record builds a complete record for a movie that was never listed
func (d MovieDetails) Record() MovieRecord {
	rec := MovieRecord{
		ID:          d.ID,
		Title:       d.Title,
		Rating:      d.Rating,
		ReleaseDate: d.ReleaseDate,
		PosterPath:  d.PosterPath,
		Overview:    d.Overview,
		Tagline:     d.Tagline,
	}
	return d.Update().Apply(rec)
}

// SortOrder is the direction of a list query
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// String returns a human-readable representation of the sort order
func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortOrder converts "asc"/"desc" to a SortOrder (default Descending)
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return Ascending
	}
	return Descending
}

// SortKey selects the field a list is ordered by
type SortKey int

const (
	SortNone SortKey = iota // Identifier order
	SortRating
	SortReleaseDate
)

// String returns a human-readable representation of the sort key
func (k SortKey) String() string {
	switch k {
	case SortRating:
		return "rating"
	case SortReleaseDate:
		return "release date"
	default:
		return "none"
	}
}

// ParseSortKey converts a config value to a SortKey
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rating":
		return SortRating
	case "release_date", "release date", "date":
		return SortReleaseDate
	default:
		return SortNone
	}
}
