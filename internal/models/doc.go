// Package models defines the view models exchanged with the catalog API.
//
// None of these values are owned by the client; they are decoded from API
// responses, shown, and discarded or re-fetched.
//
//   - [Movie] : catalog entry with rating sources, credits and money fields
//   - [List] : user list with its movies; three titles are reserved ([IsProtectedTitle])
//   - [Review] : a star rating (0-10) with optional text
//   - [User], [Token], [Profile] : account payloads
//   - [MovieQuery] : filter and paging parameters for the movie listing
//   - [RecommendationRequest] : the four questionnaire answers plus a limit
//
// Payload fields whose shape drifted across API versions decode through
// explicit types: [Credit] for director and cast, [Score] for ratings,
// [Amount] for money strings, [Genres] and [Timestamp].
package models
