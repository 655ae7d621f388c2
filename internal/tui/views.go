package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/clint/tmdb/internal/adapter/tmdb"
	"github.com/clint/tmdb/internal/domain"
	"github.com/clint/tmdb/internal/tui/styles"
)

// View renders the current screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	switch m.Screen {
	case ScreenDetail:
		body = m.renderDetail()
	default:
		body = m.renderList()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := styles.HeaderStyle.Render("TMDB · Top Rated")

	k, o := m.list.Sort()
	arrow := "↓"
	if o == domain.Ascending {
		arrow = "↑"
	}
	badge := styles.HeaderBadgeStyle.Render(fmt.Sprintf("sort: %s %s", k, arrow))

	count := ""
	if recs, ok := m.listState.Value(); ok {
		if m.filtering && m.filterInput.Value() != "" {
			count = styles.DimStyle.Render(fmt.Sprintf(" %d/%d movies", len(m.rows), len(recs)))
		} else {
			count = styles.DimStyle.Render(fmt.Sprintf(" %d movies", len(recs)))
		}
	}

	return title + " " + badge + count
}

// === List ===

func (m Model) renderList() string {
	height := m.Height - ChromeHeight
	var lines []string

	if m.filtering {
		lines = append(lines, m.filterInput.View())
		height--
	}

	recs, _ := m.listState.Value()
	switch {
	case len(m.rows) == 0 && m.listState.IsLoading():
		lines = append(lines, m.spinner.View()+" "+styles.DimStyle.Render("Loading movies..."))
	case len(m.rows) == 0 && len(recs) > 0:
		lines = append(lines, styles.DimStyle.Render("No matches"))
	case len(m.rows) == 0:
		lines = append(lines, styles.DimStyle.Render("No movies cached. Press r to fetch the top rated list."))
	default:
		end := min(m.offset+max(height, 1), len(m.rows))
		for i := m.offset; i < end; i++ {
			row := m.rows[i]
			lines = append(lines, m.renderRow(recs[row.Index], row.Matched, i == m.cursor))
		}
	}

	// Pad to keep the footer on the last line
	for len(lines) < m.Height-ChromeHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(rec domain.MovieRecord, matched []int, selected bool) string {
	rating := styles.RatingStyle.Render(fmt.Sprintf("★ %.1f", rec.Rating))
	title := highlight(rec.Title, matched)

	year := ""
	if y := rec.ReleaseYear(); y > 0 {
		year = styles.DimStyle.Render(fmt.Sprintf(" (%d)", y))
	}
	fetched := ""
	if rec.DetailsFetched {
		fetched = styles.DimStyle.Render(" ·")
	}

	line := rating + "  " + title + year + fetched
	width := max(m.Width-2, 10)
	if selected {
		return styles.SelectedItemStyle.Width(width).Render(line)
	}
	return styles.NormalItemStyle.Width(width).Render(line)
}

// highlight renders title with the matched byte positions emphasized
func highlight(title string, matched []int) string {
	if len(matched) == 0 {
		return title
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		if set[i] {
			b.WriteString(styles.MatchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// === Details ===

func (m Model) renderDetail() string {
	width := max(m.Width-4, 20)
	out := m.detailState

	rec := m.detailMovie
	if v, ok := out.Value(); ok {
		rec = v
	}

	var sections []string
	sections = append(sections, styles.TitleStyle.Render(rec.DisplayTitle()))
	if rec.Tagline != "" {
		sections = append(sections, styles.TaglineStyle.Render(rec.Tagline))
	}

	switch {
	case out.IsLoading():
		sections = append(sections, m.spinner.View()+" "+styles.DimStyle.Render("Loading details..."))
	case out.IsError():
		msg := "Couldn't load details: " + out.Message
		sections = append(sections, styles.ErrorStyle.Render(msg)+styles.DimStyle.Render("  (r to retry)"))
	}

	sections = append(sections, m.renderFacts(rec))

	if rec.Overview != "" {
		sections = append(sections, lipgloss.NewStyle().Width(width-6).Render(rec.Overview))
	}

	if poster := tmdb.ImageURL(m.opts.ImageBaseURL, rec.PosterPath); poster != "" {
		sections = append(sections, styles.DimStyle.Render("Poster:   "+poster))
	}
	if backdrop := tmdb.ImageURL(m.opts.ImageBaseURL, rec.BackdropPath); backdrop != "" {
		sections = append(sections, styles.DimStyle.Render("Backdrop: "+backdrop))
	}

	border := styles.DetailBorder
	if out.IsError() {
		border = styles.StaleBorder
	}
	return border.Width(width).Render(strings.Join(sections, "\n\n"))
}

// renderFacts renders rating, release date, status, runtime and genres
func (m Model) renderFacts(rec domain.MovieRecord) string {
	facts := []string{styles.RatingStyle.Render(fmt.Sprintf("★ %.1f", rec.Rating))}
	if rec.ReleaseDate != "" {
		facts = append(facts, rec.DisplayReleaseDate())
	}
	if rec.DetailsFetched {
		if rec.Status != "" {
			facts = append(facts, rec.Status)
		}
		facts = append(facts, rec.FormattedRuntime())
		if rec.Genres != "" {
			facts = append(facts, rec.Genres)
		}
	}
	if rec.Director != "" {
		facts = append(facts, "Directed by "+rec.Director)
	}
	return strings.Join(facts, styles.DimStyle.Render("  ·  "))
}

// === Footer ===

func (m Model) renderFooter() string {
	var left string
	switch {
	case m.refreshing:
		left = m.spinner.View() + " " + styles.DimStyle.Render(m.progressText())
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	right := m.renderHelp()

	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}

// renderHelp renders the key hints for the current screen
func (m Model) renderHelp() string {
	var bindings []struct{ key, desc string }
	add := func(k, d string) { bindings = append(bindings, struct{ key, desc string }{k, d}) }

	if m.Screen == ScreenDetail {
		add("esc", "back")
		add("r", "retry")
	} else {
		add("/", "filter")
		add("s", "sort")
		add("o", "order")
		add("r", "refresh")
	}
	add("q", "quit")

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = styles.HelpKeyStyle.Render(b.key) + " " + styles.HelpDescStyle.Render(b.desc)
	}
	return strings.Join(parts, "  ")
}
