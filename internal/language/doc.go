// Package language maps the language spellings found in configuration files
// and catalog records onto ISO 639-1 codes and display names.
//
// The industry rule compares a movie's original language against configured
// code lists, so operators may write "hindi", "hin", or "hi" and get the same
// result. Unknown two-letter codes pass through unchanged.
package language
