// Package catalog wraps the TMDB v3 API as the movie metadata catalog used
// by the migration pipeline.
//
// A Client holds one or more API keys. Requests use the current key and a
// 429 response rotates to the next key and retries the same request once;
// the rotation index is shared by every goroutine using the client. All
// requests pass through a token-bucket limiter, and search and detail
// results are cached for a configurable TTL.
//
// Transport failures surface as ErrUnavailable so callers can treat them as
// missing data. Unknown movie ids surface as ErrNotFound.
package catalog
