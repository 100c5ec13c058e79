// Package services implements the movie metadata client used by the catalog loader.
//
// # Service Interface
//
// [Service] is the read side the loader depends on: one GET, one result set.
//
// # TMDB Implementation
//
// [TMDBService] talks to the TMDB v3 API. Requests are authenticated either with
// the api_key query parameter or, when a v4 read access token is configured,
// with a bearer token attached by an [oauth2] client. Every request also
// carries the configured language.
//
// # Raw Requests
//
// [APIService] performs unauthenticated-by-default GETs and returns the raw
// status, headers and body. [TMDBService] builds on it, and the CLI uses it
// directly for "catalog get".
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : neither api key nor read token configured
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrMalformedResponse] : body is not JSON or has no results field
//   - [shared.ErrUnknownCategory] : category key is not one of the eight
package services
