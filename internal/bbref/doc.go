// Package bbref turns basketball-reference.com pages into typed rows.
//
// Each page type has a pure parse function over a table.Dataset (ParseVoting,
// ParseSeasons, ParseTeamSeason) and a Source method that fetches the page, extracts
// the table, and parses it.
package bbref
