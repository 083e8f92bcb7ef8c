// Package aggregate joins award voting, player season logs and team season totals
// into one career summary per voted player.
//
// A run has two phases. Voting years are read in order and every candidate's share
// is added to an accumulator keyed by player id. Then each player's season log is
// fetched by a bounded pool of workers and scored against the games their team
// played that season.
package aggregate
