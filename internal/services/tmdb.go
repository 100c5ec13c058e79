package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

const (
	DefaultTMDBURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
)

// TMDBOpts configures a [TMDBService]. One of APIKey and ReadAccessToken is required.
type TMDBOpts struct {
	BaseURL         string
	APIKey          string
	ReadAccessToken string
	Language        string
	HTTPClient      *http.Client
}

// TMDBService implements [Service] for the TMDB v3 API.
type TMDBService struct {
	api *APIService
}

var _ Service = (*TMDBService)(nil)

// NewTMDBService creates a TMDB client.
//
// With a read access token the HTTP client is wrapped by [oauth2.NewClient] so every request carries
// the bearer token; otherwise the api_key parameter is added to every request.
func NewTMDBService(ctx context.Context, opts TMDBOpts) (*TMDBService, error) {
	if opts.APIKey == "" && opts.ReadAccessToken == "" {
		return nil, fmt.Errorf("%w: set catalog.api_key or catalog.read_access_token", shared.ErrMissingCredentials)
	}

	client := opts.HTTPClient
	if opts.ReadAccessToken != "" {
		if client != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		}
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.ReadAccessToken, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, src)
	}

	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}

	api := NewAPIService(opts.BaseURL, client).WithParam("language", language)
	if opts.ReadAccessToken == "" {
		api.WithParam("api_key", opts.APIKey)
	}
	return &TMDBService{api: api}, nil
}

// NewTMDBServiceFromConfig creates a TMDB client from the [catalog] config section.
func NewTMDBServiceFromConfig(ctx context.Context, cfg shared.CatalogConfig, client *http.Client) (*TMDBService, error) {
	return NewTMDBService(ctx, TMDBOpts{
		BaseURL:         cfg.BaseURL,
		APIKey:          cfg.APIKey,
		ReadAccessToken: cfg.ReadAccessToken,
		Language:        cfg.Language,
		HTTPClient:      client,
	})
}

func (s *TMDBService) Name() string { return "TMDB" }

// API exposes the underlying raw client.
func (s *TMDBService) API() *APIService { return s.api }

type resultsEnvelope struct {
	Page    int             `json:"page"`
	Results *[]models.Movie `json:"results"`
}

type tmdbError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// StatusError is a non-2xx TMDB response. It unwraps to [shared.ErrAPIRequest].
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: tmdb status %d", shared.ErrAPIRequest, e.StatusCode)
	}
	return fmt.Sprintf("%v: tmdb status %d: %s", shared.ErrAPIRequest, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return shared.ErrAPIRequest }

// Results fetches path and returns its results, in response order.
func (s *TMDBService) Results(ctx context.Context, path string) ([]models.Movie, error) {
	resp, err := s.api.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var apiErr tmdbError
		if err := json.Unmarshal(resp.Body, &apiErr); err == nil {
			statusErr.Message = apiErr.StatusMessage
		}
		return nil, statusErr
	}

	var envelope resultsEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMalformedResponse, err)
	}
	if envelope.Results == nil {
		return nil, fmt.Errorf("%w: response has no results field", shared.ErrMalformedResponse)
	}

	return *envelope.Results, nil
}

// Category fetches one catalog category. Errors are wrapped with the category key.
func (s *TMDBService) Category(ctx context.Context, c models.Category) ([]models.Movie, error) {
	movies, err := s.Results(ctx, c.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Key, err)
	}
	return movies, nil
}

// Row fetches the category named by key.
func (s *TMDBService) Row(ctx context.Context, key models.CategoryKey) ([]models.Movie, error) {
	c, ok := models.LookupCategory(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownCategory, key)
	}
	return s.Category(ctx, c)
}
