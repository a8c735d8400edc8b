// Package repositories implements the client's local sqlite state.
//
// The catalog itself lives behind the API; locally the client only keeps what
// a browser would keep in local storage, plus a history of list exports.
//
// Key Implementations:
//   - [StorageRepository] : key/value rows in the local_storage table
//   - [SessionStore] : the access token under the fixed "access_token" key
//   - [ExportRunRepository] : one row per `kino lists export` run
package repositories
