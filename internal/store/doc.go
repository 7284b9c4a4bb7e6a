// Package store persists migration output in SQLite.
//
// The database is used as a small document store: every collection keeps
// the full record as a JSON document next to the few columns that queries
// filter or sort on. Collections:
//
//   - migrated_posts: posts awaiting moderation (pending or rejected)
//   - movie_mappings: evidence linking a post to a catalog movie
//   - failed_mappings: posts the matcher could not resolve
//   - published_reviews: approved posts
//   - movies: catalog movies keyed by an internal id
//
// Batch writes from a migration run commit in one transaction so readers see
// either the previous state or the complete batch. Moderation writes are
// atomic per post. Writes retry on SQLITE_BUSY with a short backoff.
package store
