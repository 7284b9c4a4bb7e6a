// Command filmwallaa migrates a WordPress export into the movie review
// store and moderates the result.
//
// Subcommands are grouped by concern: `migrate` runs and inspects migration
// batches, `review` lists, approves, rejects, and manually maps migrated
// posts, `catalog` queries the movie catalog when choosing a manual id, and
// `config` creates or validates the configuration file.
package main
