// package services defines interface Service for interacting with HTTP APIs
//
// TMDB (The Movie Database) v3
package services

import (
	"context"

	"github.com/desertthunder/reelx/internal/models"
)

// Service defines the interface for movie metadata providers that serve paged result sets.
type Service interface {
	// Results fetches path and returns the "results" array of the response.
	// A response without a results field is an error.
	Results(ctx context.Context, path string) ([]models.Movie, error)

	// Name returns the name of the service (e.g., "TMDB")
	Name() string
}
