// Package tasks holds the client-side state and orchestration behind each
// screen of kino.
//
// # State containers
//
// [Catalog] keeps pending input filters apart from applied filters and tags
// every fetch with a generation so that only the latest response is shown.
// [Membership] tracks which movies are in which of the viewer's lists and
// rolls back optimistic toggles that the API rejects. [Ratings] holds the
// viewer's star ratings and the open selector row. [Questionnaire] walks
// through the recommendation questions and issues one request at the end.
//
// All containers are safe for concurrent use; the TUI resolves fetches on
// command goroutines.
//
// # Loaders
//
// [ResolveViewer] turns a session into a viewer with reserved lists,
// [LoadDetail] fetches a movie page, and [Exporter] writes lists to disk
// with a rate-limited worker pool, reporting [ProgressUpdate] values on a
// non-blocking channel.
//
// Operations depend on narrow interfaces ([MovieLister], [ListReader],
// [ViewerAPI], ...) that *services.Client satisfies.
package tasks
