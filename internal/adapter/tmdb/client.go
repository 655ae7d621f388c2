package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/clint/tmdb/internal/domain"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	defaultTimeout      = 30 * time.Second

	// maxResponseBytes caps a single response body
	maxResponseBytes = 4 << 20
)

// Client implements domain.CatalogClient for the TMDB v3 API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client.
// Empty baseURL and non-positive timeout fall back to the defaults.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs a GET against the API and returns the body of a 2xx response.
// Failures are not retried.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}
	logURL := redact(c.baseURL+path, query)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("tmdb request", "method", http.MethodGet, "url", logURL)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("tmdb request failed", "url", logURL, "error", redactErr(err, query))
		return nil, fmt.Errorf("%w: %v", domain.ErrOffline, redactErr(err, query))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrOffline, err)
	}
	if len(body) > maxResponseBytes {
		c.logger.Error("tmdb response too large", "url", logURL, "limit", maxResponseBytes)
		return nil, fmt.Errorf("%w: response exceeds %d bytes", domain.ErrMalformedResponse, maxResponseBytes)
	}

	c.logger.Debug("tmdb response",
		"url", logURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &domain.HTTPError{StatusCode: resp.StatusCode}
		var envelope ErrorResponse
		if json.Unmarshal(body, &envelope) == nil {
			httpErr.Message = envelope.StatusMessage
		}
		c.logger.Error("tmdb request error", "url", logURL, "status", resp.StatusCode, "message", httpErr.Message)
		return nil, httpErr
	}

	return body, nil
}

// decode unmarshals a response body, mapping failures to ErrMalformedResponse
func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// GetTopRated returns one page of the top rated movie list (pages start at 1)
func (c *Client) GetTopRated(ctx context.Context, apiKey string, page int) (*domain.MoviePage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("api_key", apiKey)
	query.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, "/movie/top_rated", query)
	if err != nil {
		return nil, err
	}

	var resp ListResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	return MapMoviePage(resp), nil
}

// GetMovieDetails returns the full details of one movie
func (c *Client) GetMovieDetails(ctx context.Context, apiKey string, movieID int) (*domain.MovieDetails, error) {
	query := url.Values{}
	query.Set("api_key", apiKey)

	path := fmt.Sprintf("/movie/%d", movieID)
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var resp MovieResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, fmt.Errorf("%w: movie %d has no id", domain.ErrMalformedResponse, movieID)
	}
	return MapMovieDetails(resp), nil
}

// ValidateKey checks an API key by fetching the first top rated page
func (c *Client) ValidateKey(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return domain.ErrAuthFailed
	}
	_, err := c.GetTopRated(ctx, apiKey, 1)
	return err
}

// ImageURL builds an absolute image URL from a relative poster or backdrop path
func ImageURL(imageBaseURL, path string) string {
	if path == "" {
		return ""
	}
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	return strings.TrimRight(imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// redact renders a request URL for logs with the api key masked
func redact(base string, query url.Values) string {
	if query == nil {
		return base
	}
	masked := url.Values{}
	for k, v := range query {
		if k == "api_key" {
			masked.Set(k, "REDACTED")
			continue
		}
		masked[k] = v
	}
	return base + "?" + masked.Encode()
}

// redactErr strips the api key from transport errors, which embed the request URL
func redactErr(err error, query url.Values) error {
	key := query.Get("api_key")
	if key == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, key) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, key, "REDACTED"))
}
