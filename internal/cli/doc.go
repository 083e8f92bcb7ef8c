// Package cli implements the award-shares command.
//
// One invocation runs the whole pipeline: it loads the configuration, reads the
// award's voting history and every voted player's season log, writes the CSV report
// and prints a summary, a JSON document or a table to stdout.
package cli
