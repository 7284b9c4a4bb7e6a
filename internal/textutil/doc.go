// Package textutil provides the text helpers shared by the export extractor
// and the title matcher.
//
// The primary use cases are:
//   - Folding accented Latin text to ASCII and building URL slugs
//   - Collapsing whitespace and truncating at word boundaries
//   - Token fingerprints and cosine similarity for comparing titles
//
// Tokenization folds accents, lowercases, splits on non-alphanumeric
// characters, and drops single-character tokens.
package textutil
