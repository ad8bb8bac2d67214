// Package stats derives posting streaks, uptime and engagement insights from a
// creator's post history.
//
// Every function here is a pure transform of its arguments. "Now" and the
// timezone used to place posts on calendar days are passed in explicitly via
// Clock or a *time.Location, so results are reproducible and safe to compute
// concurrently. Nothing in this package returns an error: empty or degenerate
// input yields a documented zero value.
package stats
