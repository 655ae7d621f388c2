package domain

import "context"

// CatalogClient: Network operations against the remote movie catalog
// (implemented by adapter/tmdb).
type CatalogClient interface {
	// GetTopRated returns one page of the top-rated list (pages start at 1)
	GetTopRated(ctx context.Context, apiKey string, page int) (*MoviePage, error)

	// GetMovieDetails returns the full details of a single movie
	GetMovieDetails(ctx context.Context, apiKey string, movieID int) (*MovieDetails, error)
}
