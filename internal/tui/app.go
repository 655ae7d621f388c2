package tui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/clint/tmdb/internal/domain"
	"github.com/clint/tmdb/internal/tui/styles"
	"github.com/clint/tmdb/internal/viewmodel"
)

// Screen is the page currently shown
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
)

// ChromeHeight is the header plus the footer line
const ChromeHeight = 2

// Repository is what the TUI needs from the catalog
type Repository interface {
	viewmodel.ListSource
	viewmodel.DetailSource
	Invalidate() error
}

// Options configures the TUI
type Options struct {
	APIKey       string
	Pages        int // Top rated pages per refresh
	ImageBaseURL string
	SortKey      domain.SortKey
	SortOrder    domain.SortOrder
	Logger       *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	repo   Repository
	opts   Options
	keys   KeyMap
	logger *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce *sync.Once

	// List screen
	list          *viewmodel.ListViewModel
	listObs       *viewmodel.ChannelObserver[[]domain.MovieRecord]
	listState     domain.Outcome[[]domain.MovieRecord]
	progress      *ProgressObserver
	syncProgress  SyncProgressMsg
	refreshing    bool
	autoRefreshed bool

	rows        []filterRow
	cursor      int
	offset      int
	filterInput textinput.Model
	filtering   bool

	// Detail screen
	Screen       Screen
	detail       *viewmodel.DetailViewModel
	detailObs    *viewmodel.ChannelObserver[domain.MovieRecord]
	detailDone   chan struct{}
	detailScreen int
	detailMovie  domain.MovieRecord // Summary shown while loading
	detailState  domain.Outcome[domain.MovieRecord]

	// UI state
	spinner     spinner.Model
	StatusMsg   string
	StatusIsErr bool
	Width       int
	Height      int
	Ready       bool
}

// NewModel creates a new application model scoped to parent
func NewModel(parent context.Context, repo Repository, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)

	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{Frames: styles.SpinnerFrames, FPS: time.Second / 12}
	sp.Style = styles.SpinnerStyle

	list := viewmodel.NewListViewModel(ctx, repo, opts.APIKey, opts.Logger)
	list.SetSort(opts.SortKey, opts.SortOrder)
	listObs := viewmodel.NewChannelObserver[[]domain.MovieRecord]()
	list.Observe(listObs)

	return Model{
		repo:        repo,
		opts:        opts,
		keys:        DefaultKeyMap(),
		logger:      opts.Logger,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		stopOnce:    &sync.Once{},
		list:        list,
		listObs:     listObs,
		listState:   domain.Loading[[]domain.MovieRecord](),
		progress:    NewProgressObserver(),
		filterInput: ti,
		spinner:     sp,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	m.list.Start()
	return tea.Batch(
		m.spinner.Tick,
		listenListCmd(m.listObs.C(), m.done),
		listenProgressCmd(m.progress.ch, m.done),
	)
}

// Close stops every screen and background listener. Safe to call more than once.
func (m *Model) Close() {
	m.closeDetail()
	m.stopOnce.Do(func() {
		close(m.done)
		m.list.Close()
		m.cancel()
	})
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ListOutcomeMsg:
		cmd := m.applyListOutcome(msg.Outcome)
		return m, tea.Batch(cmd, listenListCmd(m.listObs.C(), m.done))

	case SyncProgressMsg:
		m.syncProgress = msg
		return m, listenProgressCmd(m.progress.ch, m.done)

	case DetailOutcomeMsg:
		if m.detail == nil || msg.Screen != m.detailScreen {
			// Late message from a closed details screen
			return m, nil
		}
		m.detailState = msg.Outcome
		return m, listenDetailCmd(m.detailScreen, m.detailObs.C(), m.detailDone)

	case CacheClearedMsg:
		cmd := m.refresh()
		m.setStatus("Cache cleared", false)
		return m, cmd

	case ErrMsg:
		m.logger.Error("tui error", "context", msg.Context, "error", msg.Err)
		m.setStatus(msg.Error(), true)
		return m, nil
	}

	return m, nil
}

func (m *Model) applyListOutcome(out domain.Outcome[[]domain.MovieRecord]) tea.Cmd {
	m.listState = out
	if !out.IsLoading() {
		m.refreshing = false
	}
	if out.IsError() {
		m.setStatus("Refresh failed: "+out.Message, true)
	}
	m.recomputeRows()

	// First launch: nothing cached yet
	if recs, ok := out.Value(); ok && out.IsSuccess() && len(recs) == 0 && !m.autoRefreshed {
		m.autoRefreshed = true
		return m.refresh()
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	if !m.list.Refresh(m.opts.Pages, m.progress.OnProgress) {
		return nil
	}
	m.autoRefreshed = true
	m.refreshing = true
	m.syncProgress = SyncProgressMsg{}
	m.StatusMsg = ""
	return nil
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.StatusMsg = msg
	m.StatusIsErr = isErr
}

// === Keys ===

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}

	if m.Screen == ScreenDetail {
		return m.handleDetailKey(msg)
	}

	// Filter input has focus: route keys to it
	if m.filtering && m.filterInput.Focused() {
		switch msg.String() {
		case "esc":
			m.clearFilter()
			return m, nil
		case "enter":
			m.filterInput.Blur()
			return m, nil
		case "backspace":
			if m.filterInput.Value() == "" {
				m.clearFilter()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.cursor, m.offset = 0, 0
		m.recomputeRows()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filterInput.Focus()

	case m.filtering && msg.String() == "esc":
		m.clearFilter()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.visibleRows() / 2)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.visibleRows() / 2)
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.rows))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.rows))

	case key.Matches(msg, m.keys.Enter):
		if rec, ok := m.selected(); ok {
			return m, m.openDetail(rec)
		}

	case key.Matches(msg, m.keys.Sort):
		k, o := m.list.Sort()
		m.list.SetSort(nextSortKey(k), o)
		m.cursor, m.offset = 0, 0

	case key.Matches(msg, m.keys.Order):
		k, o := m.list.Sort()
		if o == domain.Descending {
			o = domain.Ascending
		} else {
			o = domain.Descending
		}
		m.list.SetSort(k, o)
		m.cursor, m.offset = 0, 0

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, m.keys.ClearCache):
		return m, ClearCacheCmd(m.repo.Invalidate)
	}

	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.closeDetail()
		m.Screen = ScreenList

	case key.Matches(msg, m.keys.Refresh):
		if m.detail != nil && !m.detailState.IsLoading() {
			m.detail.Load(m.detailMovie.ID)
		}
	}
	return m, nil
}

func nextSortKey(k domain.SortKey) domain.SortKey {
	switch k {
	case domain.SortNone:
		return domain.SortRating
	case domain.SortRating:
		return domain.SortReleaseDate
	default:
		return domain.SortNone
	}
}

// === Details screen ===

func (m *Model) openDetail(rec domain.MovieRecord) tea.Cmd {
	m.closeDetail()

	m.detailScreen++
	m.detailMovie = rec
	m.detailState = domain.Loading[domain.MovieRecord]()
	m.detailDone = make(chan struct{})
	m.detailObs = viewmodel.NewChannelObserver[domain.MovieRecord]()
	m.detail = viewmodel.NewDetailViewModel(m.ctx, m.repo, m.opts.APIKey)
	m.detail.Observe(m.detailObs)
	m.detail.Load(rec.ID)
	m.Screen = ScreenDetail

	m.logger.Debug("open details", "movieID", rec.ID, "title", rec.Title)
	return listenDetailCmd(m.detailScreen, m.detailObs.C(), m.detailDone)
}

// closeDetail tears down the details screen scope, if any
func (m *Model) closeDetail() {
	if m.detail == nil {
		return
	}
	close(m.detailDone)
	m.detail.Close()
	m.detail = nil
	m.detailObs = nil
	m.detailDone = nil
}

// === List navigation ===

func (m *Model) recomputeRows() {
	var recs []domain.MovieRecord
	if v, ok := m.listState.Value(); ok {
		recs = v
	}
	m.rows = applyFilter(m.filterInput.Value(), recs)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	m.ensureVisible()
}

func (m *Model) clearFilter() {
	m.filtering = false
	m.filterInput.SetValue("")
	m.filterInput.Blur()
	m.recomputeRows()
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.rows)-1)
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m Model) visibleRows() int {
	rows := m.Height - ChromeHeight
	if m.filtering {
		rows--
	}
	return max(rows, 1)
}

// selected returns the record under the cursor
func (m Model) selected() (domain.MovieRecord, bool) {
	recs, ok := m.listState.Value()
	if !ok || m.cursor >= len(m.rows) {
		return domain.MovieRecord{}, false
	}
	return recs[m.rows[m.cursor].Index], true
}

// progressText describes the running refresh
func (m Model) progressText() string {
	if m.syncProgress.Total > 0 {
		return fmt.Sprintf("Fetching top rated · page %d/%d", m.syncProgress.Loaded, m.syncProgress.Total)
	}
	return "Fetching top rated..."
}
