// Package stats provides the value types shared by the award-shares pipeline.
//
// The stats package defines the canonical player identity (PlayerID), the season label
// normalisation used by every season log, the historical team-code mapping, and the row
// types produced by the source parsers and consumed by the aggregator. All rows are
// immutable values; nothing in this package performs I/O.
package stats
