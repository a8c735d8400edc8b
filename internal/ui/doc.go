// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [CatalogView] : Browse the catalog page by page, edit the search text and sort key, and apply them
//  2. [DetailView] : Read a movie page with similar movies and reviews
//  3. [QuestionnaireView] : Answer four questions and browse the recommended movies
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Every backend call runs as a [tea.Cmd]; catalog pages are resolved through the catalog's generation check so a slow
// response to an older request never replaces a newer page.
//
// Signed-in viewers can toggle the watchlist (w) and seen list (s) and rate the highlighted movie (r, then 1-9 or 0 for ten).
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
package ui
