package tmdb

import "github.com/clint/tmdb/internal/domain"

// MapMoviePage converts a list response to the domain page
func MapMoviePage(resp ListResponse) *domain.MoviePage {
	movies := make([]domain.MovieSummary, 0, len(resp.Results))
	for _, r := range resp.Results {
		movies = append(movies, MapMovieSummary(r))
	}
	return &domain.MoviePage{
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
		Movies:       movies,
	}
}

// MapMovieSummary converts one list entry
func MapMovieSummary(r MovieResult) domain.MovieSummary {
	return domain.MovieSummary{
		ID:           r.ID,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		ReleaseDate:  r.ReleaseDate,
		Rating:       r.VoteAverage,
	}
}

// MapMovieDetails converts the details payload
func MapMovieDetails(r MovieResponse) *domain.MovieDetails {
	genres := make([]domain.Genre, 0, len(r.Genres))
	for _, g := range r.Genres {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return &domain.MovieDetails{
		ID:           r.ID,
		Title:        r.Title,
		Overview:     r.Overview,
		Status:       r.Status,
		Tagline:      r.Tagline,
		BackdropPath: r.BackdropPath,
		PosterPath:   r.PosterPath,
		ReleaseDate:  r.ReleaseDate,
		Rating:       r.VoteAverage,
		RunTime:      r.Runtime,
		Genres:       genres,
	}
}
