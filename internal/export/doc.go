// Package export reads WordPress eXtended RSS (WXR) exports and turns the
// items that look like movie reviews into posts ready for migration.
//
// Only items whose wp:post_type is "post" are considered. Each one is
// reduced to plain text, classified against the review keyword vocabulary,
// and enriched with the derived fields the review site needs: a rating
// guess, an excerpt, a read-time label and a slug. Extraction has no side
// effects beyond logging.
package export
