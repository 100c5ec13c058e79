// Package models defines domain entities and persistence interfaces for the reelx catalog front end.
//
// The package contains three categories of types:
//
// 1. Catalog DTOs: values decoded from the TMDB API and handed to the presentation layer
//   - [Movie] : one movie or show summary with artwork paths
//   - [Category] : one of the eight fixed catalog segments
//   - [CatalogPage] : the eight category result sets of one home page render
//
// 2. Session values published by the identity provider
//   - [Identity] : opaque handle (id + email) for an authenticated principal
//   - [AuthRequestState] : whether a sign-up/sign-in/sign-out call is in flight
//
// 3. Persistent Entities: Database-backed models with full lifecycle management
//   - [Account] : local identity provider accounts with bcrypt password hashes
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
