package bbref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/award-shares/internal/stats"
	"github.com/pfrederiksen/award-shares/internal/table"
)

// Table ids on the site.
const (
	TeamTotalsTable = "totals-team"
	SeasonLogTable  = "advanced"
)

// leagueAverage is the summary row at the foot of every team totals table.
const leagueAverage = "League Average"

// ParseVoting converts an award voting table. Rows without a player link or without
// points are not candidates and are skipped.
func ParseVoting(ds *table.Dataset, year int) ([]stats.VotingRow, error) {
	if ds.Index("Player") < 0 || ds.Index("Pts Won") < 0 || ds.Index("Pts Max") < 0 {
		return nil, fmt.Errorf("voting table %d: missing Player, Pts Won or Pts Max column (have %q)", year, ds.Headers)
	}

	rows := make([]stats.VotingRow, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		link := ds.Link(i, "Player")
		won := ds.Get(i, "Pts Won")
		top := ds.Get(i, "Pts Max")
		if link == "" || won == "" || top == "" {
			continue
		}

		id, err := stats.ParsePlayerID(link)
		if err != nil {
			return nil, fmt.Errorf("voting table %d row %d: %w", year, i, err)
		}

		ptsWon, err := parseNumber(ds, i, "Pts Won")
		if err != nil {
			return nil, err
		}
		ptsMax, err := parseNumber(ds, i, "Pts Max")
		if err != nil {
			return nil, err
		}

		rows = append(rows, stats.VotingRow{
			Player:    id,
			Name:      table.StripMarker(ds.Get(i, "Player")),
			Year:      year,
			PointsWon: ptsWon,
			PointsMax: ptsMax,
		})
	}
	return rows, nil
}

// ParseSeasons cleans a player's season log:
//   - rows with a blank Age are footer rows (career, per-team totals) and are dropped
//   - rows marked "Did Not Play" are dropped
//   - all-blank columns are dropped
//   - G, MP and DWS are parsed; a blank cell or a dropped column counts as 0
//   - a missing Lg column leaves League blank for the caller to default
//   - seasons listed more than once keep the combined-team row, else the first row
func ParseSeasons(ds *table.Dataset) ([]stats.SeasonRow, error) {
	if ds.Index("Age") < 0 || ds.Index("Season") < 0 {
		return nil, fmt.Errorf("season log: missing Season or Age column (have %q)", ds.Headers)
	}

	ageCol := ds.Index("Age")
	cleaned := ds.Filter(func(row []string) bool {
		if strings.TrimSpace(row[ageCol]) == "" {
			return false
		}
		for _, c := range row {
			if strings.HasPrefix(c, "Did Not Play") {
				return false
			}
		}
		return true
	}).DropBlankColumns()

	teamCol := firstHeader(cleaned, "Tm", "Team")

	rows := make([]stats.SeasonRow, 0, cleaned.Len())
	for i := 0; i < cleaned.Len(); i++ {
		year, err := stats.ParseSeason(cleaned.Get(i, "Season"))
		if err != nil {
			return nil, fmt.Errorf("season log row %d: %w", i, err)
		}

		games, err := parseOptional(cleaned, i, "G")
		if err != nil {
			return nil, err
		}
		minutes, err := parseOptional(cleaned, i, "MP")
		if err != nil {
			return nil, err
		}
		dws, err := parseOptional(cleaned, i, "DWS")
		if err != nil {
			return nil, err
		}

		rows = append(rows, stats.SeasonRow{
			Year:    year,
			Age:     cleaned.Get(i, "Age"),
			Team:    cleaned.Get(i, teamCol),
			League:  strings.ToUpper(cleaned.Get(i, "Lg")),
			Games:   games,
			Minutes: minutes,
			DWS:     dws,
		})
	}

	return CollapseSeasons(rows), nil
}

// CollapseSeasons keeps one row per season year, in order of first appearance.
// A combined-team row wins over per-team rows for the same season.
func CollapseSeasons(rows []stats.SeasonRow) []stats.SeasonRow {
	index := make(map[int]int, len(rows))
	out := make([]stats.SeasonRow, 0, len(rows))
	for _, r := range rows {
		i, seen := index[r.Year]
		if !seen {
			index[r.Year] = len(out)
			out = append(out, r)
			continue
		}
		if r.Combined() && !out[i].Combined() {
			out[i] = r
		}
	}
	return out
}

// ParseTeamSeason converts a team totals table. The trailing League Average row is
// dropped and team names lose their playoff marker.
func ParseTeamSeason(ds *table.Dataset, league string, year int) (*stats.TeamSeason, error) {
	if ds.Index("Team") < 0 || ds.Index("G") < 0 {
		return nil, fmt.Errorf("team totals %s %d: missing Team or G column (have %q)", league, year, ds.Headers)
	}

	var names []string
	var games []int
	for i := 0; i < ds.Len(); i++ {
		name := table.StripMarker(ds.Get(i, "Team"))
		if name == "" || name == leagueAverage {
			continue
		}
		g, err := strconv.Atoi(strings.TrimSpace(ds.Get(i, "G")))
		if err != nil {
			return nil, &stats.MalformedRowError{
				Table:  fmt.Sprintf("team totals %s %d", league, year),
				Row:    i,
				Column: "G",
				Value:  ds.Get(i, "G"),
				Err:    err,
			}
		}
		names = append(names, name)
		games = append(games, g)
	}

	return stats.NewTeamSeason(strings.ToUpper(league), year, names, games)
}

func firstHeader(ds *table.Dataset, names ...string) string {
	if i := ds.IndexOf(names...); i >= 0 {
		return ds.Headers[i]
	}
	return names[0]
}

func parseNumber(ds *table.Dataset, row int, col string) (float64, error) {
	raw := strings.TrimSpace(ds.Get(row, col))
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, &stats.MalformedRowError{Table: ds.ID, Row: row, Column: col, Value: raw, Err: err}
	}
	return v, nil
}

// parseOptional treats a missing column or a blank cell as 0.
func parseOptional(ds *table.Dataset, row int, col string) (float64, error) {
	if ds.Index(col) < 0 || strings.TrimSpace(ds.Get(row, col)) == "" {
		return 0, nil
	}
	return parseNumber(ds, row, col)
}
