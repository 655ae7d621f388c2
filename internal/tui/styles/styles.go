package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	TMDBTeal   = lipgloss.Color("#01B4E4")
	TMDBGreen  = lipgloss.Color("#90CEA1")
	NavyDark   = lipgloss.Color("#0D253F")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Yellow     = lipgloss.Color("#FACC15")
	Red        = lipgloss.Color("#EF4444")
)

// SpinnerFrames are shared by the setup prompt and the TUI spinner
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(TMDBTeal)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	TaglineStyle = lipgloss.NewStyle().
			Foreground(TMDBGreen).
			Italic(true)

	RatingStyle = lipgloss.NewStyle().
			Foreground(Yellow)
)

// Header bar
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(NavyDark).
			Bold(true).
			Padding(0, 1)

	HeaderBadgeStyle = lipgloss.NewStyle().
				Foreground(NavyDark).
				Background(TMDBGreen).
				Padding(0, 1)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)

	// MatchStyle highlights fuzzy-matched characters
	MatchStyle = lipgloss.NewStyle().
			Foreground(TMDBTeal).
			Bold(true)
)

// Panel styles
var (
	BodyStyle = lipgloss.NewStyle().
			Padding(1, 2)

	DetailBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(TMDBTeal).
			Padding(1, 2)

	StaleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Padding(1, 2)
)

// Filter input
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(TMDBTeal)

	FilterStyle = lipgloss.NewStyle().
			Foreground(White)
)

// Status bar
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(TMDBTeal)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(TMDBTeal)
)
