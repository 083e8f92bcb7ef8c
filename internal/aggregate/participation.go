package aggregate

// Participation thresholds as fractions of a team's season games.
const (
	HalfSeason         = 0.5
	ThreeQuarterSeason = 0.75
)

// Participation reports whether games played reaches half and three quarters of
// the team's games. A season without team games qualifies for neither.
func Participation(games float64, teamGames int) (over50, over75 bool) {
	if teamGames <= 0 {
		return false, false
	}
	g := float64(teamGames)
	return games >= HalfSeason*g, games >= ThreeQuarterSeason*g
}
