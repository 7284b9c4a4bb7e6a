// Package matcher turns free-text blog post titles into catalog matches.
//
// Normalize strips review-style decoration ("... Movie Review: A Must
// Watch", "Review: ...", leading articles) until the title stops changing.
// Match searches the catalog with the normalized title and takes the first
// candidate the catalog returns.
package matcher
