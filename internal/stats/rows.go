package stats

import (
	"errors"
	"fmt"
)

// VotingRow is one candidate in one year's award voting.
type VotingRow struct {
	Player    PlayerID
	Name      string
	Year      int
	PointsWon float64
	PointsMax float64
}

// Share returns PointsWon / PointsMax. A valid share lies in (0, 1].
func (r VotingRow) Share() (float64, error) {
	if r.PointsMax <= 0 {
		return 0, &MalformedRowError{
			Table:  fmt.Sprintf("voting %d", r.Year),
			Column: "Pts Max",
			Value:  fmt.Sprint(r.PointsMax),
			Err:    errors.New("maximum points must be positive"),
		}
	}
	share := r.PointsWon / r.PointsMax
	if share <= 0 || share > 1 {
		return 0, &MalformedRowError{
			Table:  fmt.Sprintf("voting %d", r.Year),
			Column: "Pts Won",
			Value:  fmt.Sprint(r.PointsWon),
			Err:    fmt.Errorf("share %v outside (0, 1]", share),
		}
	}
	return share, nil
}

// SeasonRow is one season of a player's season log after cleaning.
type SeasonRow struct {
	Year    int
	Age     string
	Team    string
	League  string
	Games   float64
	Minutes float64
	DWS     float64
}

// Combined reports whether the row totals several teams.
func (r SeasonRow) Combined() bool {
	return IsCombinedTeam(r.Team)
}

// TeamSeason holds each team's games played for one league season, keyed by team name.
type TeamSeason struct {
	League string
	Year   int
	Games  map[string]int
}

// NewTeamSeason builds a TeamSeason. Duplicate team names are rejected.
func NewTeamSeason(league string, year int, names []string, games []int) (*TeamSeason, error) {
	if len(names) != len(games) {
		return nil, fmt.Errorf("team season %s %d: %d names for %d game counts", league, year, len(names), len(games))
	}
	ts := &TeamSeason{
		League: league,
		Year:   year,
		Games:  make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, dup := ts.Games[name]; dup {
			return nil, fmt.Errorf("team season %s %d: duplicate team %q", league, year, name)
		}
		ts.Games[name] = games[i]
	}
	return ts, nil
}

// TeamGames returns the season games of a team name.
func (t *TeamSeason) TeamGames(team string) (int, error) {
	g, ok := t.Games[team]
	if !ok {
		return 0, &TeamLookupError{Team: team, League: t.League, Year: t.Year}
	}
	return g, nil
}

// MaxGames returns the largest games value of any team, the length of the season.
func (t *TeamSeason) MaxGames() int {
	most := 0
	for _, g := range t.Games {
		if g > most {
			most = g
		}
	}
	return most
}

// CareerSummary is the report row for one player.
type CareerSummary struct {
	Player          PlayerID
	Name            string
	Seasons         int
	Games           float64
	Minutes         float64
	DWS             float64
	Over50          int
	Over75          int
	AwardSeasons    int
	AwardOver50     int
	AwardOver75     int
	AwardsWon       int
	CumulativeShare float64
}
