package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/clint/tmdb/internal/adapter"
	"github.com/clint/tmdb/internal/adapter/tmdb"
	"github.com/clint/tmdb/internal/catalog"
	"github.com/clint/tmdb/internal/domain"
	"github.com/clint/tmdb/internal/store"
	"github.com/clint/tmdb/internal/tui"
	"github.com/clint/tmdb/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var (
		showVersion bool
		pages       int
		clearCache  bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.IntVar(&pages, "pages", 0, "top rated pages to fetch per refresh (overrides sync.pages)")
	flag.BoolVar(&clearCache, "clear-cache", false, "remove all cached movies before starting")
	flag.Parse()

	if showVersion {
		fmt.Printf("tmdb %s\n", Version)
		return
	}

	if err := run(pages, clearCache); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(pages int, clearCache bool) error {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if pages > 0 {
		cfg.Sync.Pages = pages
	}

	// Setup logger
	logger, closeLog, err := adapter.SetupLogger(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
		closeLog = func() error { return nil }
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting tmdb", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := tmdb.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)

	// Check if configured
	if !cfg.IsConfigured() {
		if err := runSetupFlow(ctx, cfg, client); err != nil {
			return err
		}
	}

	if clearCache {
		if err := cfg.ClearCache(); err != nil {
			return err
		}
		logger.Info("cache cleared", "dir", cfg.GetCachePath())
	}

	// Open the local store
	movieStore, err := store.NewMovieStore(cfg.GetCachePath(), cfg.API.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer movieStore.Close()

	repo := catalog.NewRepository(client, movieStore, logger)
	repo.SetDetailObserver(logObserver{logger: logger})

	model := tui.NewModel(ctx, repo, tui.Options{
		APIKey:       cfg.API.Key,
		Pages:        cfg.Sync.Pages,
		ImageBaseURL: cfg.API.ImageBaseURL,
		SortKey:      cfg.SortKey(),
		SortOrder:    cfg.SortOrder(),
		Logger:       logger,
	})

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI")

	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// logObserver records details lookup transitions in the log
type logObserver struct {
	logger *slog.Logger
}

func (o logObserver) OnDetailState(movieID int, state domain.DetailState) {
	if state == domain.StateFailed {
		o.logger.Warn("details lookup failed", "movieID", movieID)
	}
}

// runSetupFlow asks for an API key, validates it and saves it to the config file
func runSetupFlow(ctx context.Context, cfg *adapter.Config, client *tmdb.Client) error {
	fmt.Println()
	fmt.Println("Welcome to tmdb!")
	fmt.Println("━━━━━━━━━━━━━━━━")
	fmt.Println("An API key is required. Create one at https://www.themoviedb.org/settings/api")
	fmt.Println()

	for {
		key, err := readAPIKey()
		if err != nil {
			return err
		}
		if key == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		fmt.Println()
		err = validateWithSpinner(ctx, client, key)
		if err == nil {
			cfg.API.Key = key
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch {
		case errors.Is(err, domain.ErrAuthFailed):
			fmt.Println("✗ The API key was rejected. Please try again.")
		case errors.Is(err, domain.ErrOffline):
			fmt.Println("✗ Could not reach the movie database. Check your connection.")
		default:
			fmt.Printf("✗ Could not validate the API key: %v\n", err)
		}
		fmt.Println()
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

// readAPIKey prompts for the key, hiding input on a terminal
func readAPIKey() (string, error) {
	fmt.Print("API key: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		keyBytes, err := term.ReadPassword(fd)
		fmt.Println() // Add newline after hidden input
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return strings.TrimSpace(string(keyBytes)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// validateWithSpinner checks the key against the API with a visual spinner
func validateWithSpinner(ctx context.Context, client *tmdb.Client, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resultCh := make(chan error, 1)

	// Start validation in background
	go func() {
		resultCh <- client.ValidateKey(ctx, key)
	}()

	// Spinner animation
	frame := 0
	fmt.Printf("\r%s Validating API key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			// Clear spinner line
			fmt.Print(clearSpinnerLine)
			if err != nil {
				return err
			}
			fmt.Println("✓ API key is valid")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Validating API key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("validation timed out")
		}
	}
}
