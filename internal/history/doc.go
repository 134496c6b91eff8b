// Package history records every worker run in a small SQLite database under
// the state directory.
//
// The worker calls Begin before Preparing and Finish with the terminal
// result; `drivesync history` lists the most recent runs. A run that never
// reaches Finish (the process was killed) keeps an empty phase and shows up
// as "interrupted".
package history
