// Package review implements moderation over migrated posts.
//
// A Service lists pending posts and failed mappings, approves posts into
// published reviews, rejects them in place, and lets a moderator attach a
// catalog movie by id when automatic matching failed. Every operation that
// names a post or catalog movie which does not exist returns an error
// matching ErrNotFound.
package review
