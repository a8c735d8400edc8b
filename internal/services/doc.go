// Package services implements [Client], the typed facade over the catalog REST API.
//
// # Operations
//
// Every endpoint the client consumes has one method taking a [context.Context]:
// movies (listing, detail, similar, recommend), users (login, register, current
// user, profile, password flows), lists (CRUD plus bulk add/remove of movie
// IDs) and reviews. [Client.EnsureList] and [Client.EnsureWatchlist] are the
// derived read-then-create operations for reserved lists. [Client.Raw] is a
// pass-through used by the `kino api` debugging commands.
//
// There are no retries, no caching and no request deduplication.
//
// # Sessions
//
// A Client is bound to one immutable [shared.Session]. Authenticated sessions
// get an [oauth2.Transport] over a static token source that sets the bearer
// header; anonymous sessions send no header, and calls that need a user fail
// with an error matching [shared.ErrNotAuthenticated]. Logging in or out means
// building a new client with [Client.WithSession].
//
// # Error Handling
//
// Non-2xx responses become [*APIError] carrying the status and the FastAPI
// "detail" message (or its validation entries as [FieldIssue]s). The error
// unwraps to a sentinel from the shared package:
//   - [shared.ErrNotAuthenticated] : 401, 403
//   - [shared.ErrNotFound] : 404
//   - [shared.ErrValidation] : 400, 409, 422
//   - [shared.ErrNetwork] : no response (status 0, "Network Error")
//   - [shared.ErrAPIRequest] : everything else
//
// Client-side form validation runs before any request and returns
// [*models.FieldError].
package services
