package aggregate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/award-shares/internal/metrics"
	"github.com/pfrederiksen/award-shares/internal/stats"
	"github.com/pfrederiksen/award-shares/internal/table"
)

type fakeSource struct {
	voting  map[int][]stats.VotingRow
	seasons map[stats.PlayerID][]stats.SeasonRow
	teams   map[string]*stats.TeamSeason

	votingErr map[int]error
	playerErr map[stats.PlayerID]error

	mu        sync.Mutex
	teamCalls map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		voting:    make(map[int][]stats.VotingRow),
		seasons:   make(map[stats.PlayerID][]stats.SeasonRow),
		teams:     make(map[string]*stats.TeamSeason),
		votingErr: make(map[int]error),
		playerErr: make(map[stats.PlayerID]error),
		teamCalls: make(map[string]int),
	}
}

func (f *fakeSource) Voting(_ context.Context, _ stats.Award, year int) ([]stats.VotingRow, error) {
	if err := f.votingErr[year]; err != nil {
		return nil, err
	}
	return f.voting[year], nil
}

func (f *fakeSource) PlayerSeasons(_ context.Context, id stats.PlayerID) ([]stats.SeasonRow, error) {
	if err := f.playerErr[id]; err != nil {
		return nil, err
	}
	return f.seasons[id], nil
}

func (f *fakeSource) TeamSeason(_ context.Context, league string, year int) (*stats.TeamSeason, error) {
	key := fmt.Sprintf("%s/%d", league, year)
	f.mu.Lock()
	f.teamCalls[key]++
	f.mu.Unlock()

	t, ok := f.teams[key]
	if !ok {
		return nil, fmt.Errorf("no team table %s", key)
	}
	return t, nil
}

func (f *fakeSource) addTeams(t *testing.T, year int, games map[string]int) {
	t.Helper()
	var names []string
	var counts []int
	for n, g := range games {
		names = append(names, n)
		counts = append(counts, g)
	}
	ts, err := stats.NewTeamSeason("NBA", year, names, counts)
	require.NoError(t, err)
	f.teams[fmt.Sprintf("NBA/%d", year)] = ts
}

type countMap map[stats.PlayerID]int

func (c countMap) Lookup(id stats.PlayerID) (int, bool) {
	n, ok := c[id]
	return n, ok
}

func dpoy(t *testing.T) stats.Award {
	t.Helper()
	a, err := stats.LookupAward("dpoy")
	require.NoError(t, err)
	return a
}

func TestRun_SingleSeason(t *testing.T) {
	src := newFakeSource()
	src.voting[2004] = []stats.VotingRow{
		{Player: "wallabe01", Name: "Ben Wallace", Year: 2004, PointsWon: 80, PointsMax: 100},
	}
	src.seasons["wallabe01"] = []stats.SeasonRow{
		{Year: 2004, Age: "29", Team: "DET", League: "NBA", Games: 70, Minutes: 2500, DWS: 9.7},
	}
	src.addTeams(t, 2004, map[string]int{"Detroit Pistons": 82, "Indiana Pacers": 82})

	agg := New(src, countMap{"wallabe01": 4}, Options{Award: dpoy(t), StartYear: 2004, EndYear: 2004})
	res, err := agg.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Summaries, 1)
	assert.Empty(t, res.Skipped)

	got := res.Summaries[0]
	assert.Equal(t, stats.PlayerID("wallabe01"), got.Player)
	assert.Equal(t, "Ben Wallace", got.Name)
	assert.InDelta(t, 0.8, got.CumulativeShare, 1e-12)
	assert.Equal(t, 1, got.Seasons)
	assert.Equal(t, 1, got.Over50)
	assert.Equal(t, 1, got.Over75)
	assert.Equal(t, 1, got.AwardSeasons)
	assert.Equal(t, 1, got.AwardOver50)
	assert.Equal(t, 1, got.AwardOver75, "70 >= 0.75*82")
	assert.Equal(t, 4, got.AwardsWon)
	assert.Equal(t, 70.0, got.Games)
	assert.Equal(t, 9.7, got.DWS)
}

func TestRun_AwardEraAndCombinedTeam(t *testing.T) {
	src := newFakeSource()
	src.voting[1983] = []stats.VotingRow{
		{Player: "johnsde01", Name: "Dennis Johnson", Year: 1983, PointsWon: 30, PointsMax: 120},
	}
	src.seasons["johnsde01"] = []stats.SeasonRow{
		{Year: 1982, Team: "PHO", Games: 80},
		{Year: 1983, Team: "TOT", League: "NBA", Games: 40},
	}
	src.addTeams(t, 1982, map[string]int{"Phoenix Suns": 82})
	src.addTeams(t, 1983, map[string]int{"Phoenix Suns": 82, "Boston Celtics": 80})

	agg := New(src, nil, Options{Award: dpoy(t), EndYear: 1983})
	res, err := agg.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Summaries, 1)

	got := res.Summaries[0]
	assert.Equal(t, 2, got.Seasons)
	assert.Equal(t, 1, got.Over50, "40 of 82 is under half")
	assert.Equal(t, 1, got.Over75)
	assert.Equal(t, 1, got.AwardSeasons, "only 1983 is on or after inception")
	assert.Equal(t, 0, got.AwardOver50)
	assert.Equal(t, 0, got.AwardOver75)
	assert.Equal(t, 0, got.AwardsWon)
	assert.Equal(t, 1983, res.StartYear)
}

func TestRun_ZeroSeasonPlayer(t *testing.T) {
	src := newFakeSource()
	src.voting[2010] = []stats.VotingRow{
		{Player: "nobody01", Name: "No Seasons", Year: 2010, PointsWon: 5, PointsMax: 100},
	}

	res, err := New(src, nil, Options{Award: dpoy(t), StartYear: 2010, EndYear: 2010}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Summaries, 1)

	got := res.Summaries[0]
	assert.InDelta(t, 0.05, got.CumulativeShare, 1e-12)
	assert.Zero(t, got.Seasons)
	assert.Zero(t, got.Over50)
	assert.Zero(t, got.AwardSeasons)
	assert.Zero(t, got.Games)
}

func TestRun_FaultIsolation(t *testing.T) {
	src := newFakeSource()
	src.voting[2001] = []stats.VotingRow{
		{Player: "goodpl01", Name: "Good", Year: 2001, PointsWon: 50, PointsMax: 100},
		{Player: "badpl01", Name: "Bad", Year: 2001, PointsWon: 40, PointsMax: 100},
		{Player: "oddtm01", Name: "Odd Team", Year: 2001, PointsWon: 10, PointsMax: 100},
	}
	src.votingErr[2002] = errors.New("page not found")
	src.seasons["goodpl01"] = []stats.SeasonRow{{Year: 2001, Team: "DET", League: "NBA", Games: 82}}
	src.seasons["oddtm01"] = []stats.SeasonRow{{Year: 2001, Team: "XYZ", League: "NBA", Games: 82}}
	src.playerErr["badpl01"] = errors.New("timeout")
	src.addTeams(t, 2001, map[string]int{"Detroit Pistons": 82})

	res, err := New(src, nil, Options{Award: dpoy(t), StartYear: 2001, EndYear: 2002, Workers: 2}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Summaries, 1)
	assert.Equal(t, stats.PlayerID("goodpl01"), res.Summaries[0].Player)

	require.Len(t, res.Skipped, 3)
	assert.Equal(t, 2002, res.Skipped[0].Year)
	assert.Empty(t, res.Skipped[0].Player)
	assert.Equal(t, stats.PlayerID("badpl01"), res.Skipped[1].Player)
	assert.Equal(t, stats.PlayerID("oddtm01"), res.Skipped[2].Player)

	var unknown *stats.UnknownTeamCodeError
	assert.ErrorAs(t, res.Skipped[2].Err, &unknown)
}

func TestRun_FailFast(t *testing.T) {
	src := newFakeSource()
	src.votingErr[2002] = errors.New("page not found")

	_, err := New(src, nil, Options{Award: dpoy(t), StartYear: 2001, EndYear: 2003, FailFast: true}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dpoy voting 2002")
}

func TestRun_FailFastPlayer(t *testing.T) {
	src := newFakeSource()
	src.voting[2001] = []stats.VotingRow{{Player: "badpl01", Year: 2001, PointsWon: 1, PointsMax: 2}}
	src.playerErr["badpl01"] = errors.New("timeout")

	_, err := New(src, nil, Options{Award: dpoy(t), StartYear: 2001, EndYear: 2001, FailFast: true}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "badpl01")
}

func TestRun_UnpublishedCurrentYear(t *testing.T) {
	year := time.Now().Year()
	src := newFakeSource()
	src.voting[year-1] = []stats.VotingRow{{Player: "a01", Year: year - 1, PointsWon: 1, PointsMax: 2}}
	src.votingErr[year] = &table.TableNotFoundError{ID: "dpoy"}

	for _, failFast := range []bool{false, true} {
		res, err := New(src, nil, Options{Award: dpoy(t), StartYear: year - 1, FailFast: failFast}).Run(context.Background())
		require.NoError(t, err, "fail fast %v", failFast)
		assert.Empty(t, res.Skipped)
		assert.Len(t, res.Summaries, 1)
		assert.Equal(t, year, res.EndYear)
	}
}

func TestRun_MissingPastYearIsSkipped(t *testing.T) {
	year := time.Now().Year() - 2
	src := newFakeSource()
	src.votingErr[year] = &table.TableNotFoundError{ID: "dpoy"}

	res, err := New(src, nil, Options{Award: dpoy(t), StartYear: year, EndYear: year}).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, year, res.Skipped[0].Year)
}

func TestRun_InvalidRange(t *testing.T) {
	_, err := New(newFakeSource(), nil, Options{Award: dpoy(t), StartYear: 2010, EndYear: 2000}).Run(context.Background())
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newFakeSource(), nil, Options{Award: dpoy(t), StartYear: 2000, EndYear: 2001}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_TeamTablesFetchedOnce(t *testing.T) {
	src := newFakeSource()
	var rows []stats.VotingRow
	for i := 0; i < 20; i++ {
		id := stats.PlayerID(fmt.Sprintf("player%02d", i))
		rows = append(rows, stats.VotingRow{Player: id, Year: 2005, PointsWon: 1, PointsMax: 100})
		src.seasons[id] = []stats.SeasonRow{{Year: 2005, Team: "SAS", League: "NBA", Games: 60}}
	}
	src.voting[2005] = rows
	src.addTeams(t, 2005, map[string]int{"San Antonio Spurs": 82})

	res, err := New(src, nil, Options{Award: dpoy(t), StartYear: 2005, EndYear: 2005, Workers: 8}).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Summaries, 20)
	assert.Equal(t, 1, src.teamCalls["NBA/2005"])
}

func TestRun_OrderAndMetrics(t *testing.T) {
	src := newFakeSource()
	src.voting[2006] = []stats.VotingRow{
		{Player: "bbb01", Year: 2006, PointsWon: 25, PointsMax: 100},
		{Player: "aaa01", Year: 2006, PointsWon: 25, PointsMax: 100},
		{Player: "ccc01", Year: 2006, PointsWon: 50, PointsMax: 100},
	}
	rec := metrics.New()

	res, err := New(src, nil, Options{Award: dpoy(t), StartYear: 2006, EndYear: 2006, Metrics: rec}).Run(context.Background())
	require.NoError(t, err)

	var order []stats.PlayerID
	for _, s := range res.Summaries {
		order = append(order, s.Player)
	}
	assert.Equal(t, []stats.PlayerID{"ccc01", "aaa01", "bbb01"}, order)

	want := `
# HELP award_shares_aggregate_players_total Players summarised.
# TYPE award_shares_aggregate_players_total counter
award_shares_aggregate_players_total 3
# HELP award_shares_aggregate_players_skipped_total Players skipped after an error.
# TYPE award_shares_aggregate_players_skipped_total counter
award_shares_aggregate_players_skipped_total 0
# HELP award_shares_report_rows Rows written to the report.
# TYPE award_shares_report_rows gauge
award_shares_report_rows 3
`
	err = testutil.GatherAndCompare(rec.Registry(), strings.NewReader(want),
		"award_shares_aggregate_players_total",
		"award_shares_aggregate_players_skipped_total",
		"award_shares_report_rows",
	)
	assert.NoError(t, err)
}

func TestRun_HistoricalTeams(t *testing.T) {
	mvp, err := stats.LookupAward("mvp")
	require.NoError(t, err)

	src := newFakeSource()
	src.voting[1957] = []stats.VotingRow{
		{Player: "pettibo01", Name: "Bob Pettit", Year: 1957, PointsWon: 50, PointsMax: 100},
	}
	src.seasons["pettibo01"] = []stats.SeasonRow{
		{Year: 1955, Team: "MLH", League: "NBA", Games: 72},
		{Year: 1957, Team: "STL", League: "NBA", Games: 71},
	}
	src.addTeams(t, 1955, map[string]int{"Milwaukee Hawks": 72, "Syracuse Nationals": 72})
	src.addTeams(t, 1957, map[string]int{"St. Louis Hawks": 72, "Minneapolis Lakers": 72})

	res, err := New(src, nil, Options{Award: mvp, StartYear: 1957, EndYear: 1957}).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)
	require.Len(t, res.Summaries, 1)

	got := res.Summaries[0]
	assert.Equal(t, 2, got.Seasons)
	assert.Equal(t, 2, got.Over75)
	assert.Equal(t, 1, got.AwardSeasons, "1955 predates the award")
}

func TestShares_OrderIndependent(t *testing.T) {
	rows := []stats.VotingRow{
		{Player: "a01", Year: 2001, PointsWon: 1, PointsMax: 3},
		{Player: "a01", Year: 2002, PointsWon: 7, PointsMax: 10},
		{Player: "a01", Year: 2003, PointsWon: 1, PointsMax: 7},
		{Player: "b01", Year: 2002, PointsWon: 1, PointsMax: 1},
	}

	forward := NewShares()
	for _, r := range rows {
		require.NoError(t, forward.Add(r))
	}
	backward := NewShares()
	for i := len(rows) - 1; i >= 0; i-- {
		require.NoError(t, backward.Add(rows[i]))
	}

	assert.Equal(t, forward.Total("a01"), backward.Total("a01"))
	assert.Equal(t, 1.0, forward.Total("b01"))
	assert.Equal(t, []int{2001, 2002, 2003}, mustEntry(t, forward, "a01").Years())
	assert.Equal(t, []stats.PlayerID{"a01", "b01"}, forward.Players())
	assert.Zero(t, forward.Total("zzz01"))
}

func TestShares_RejectsInvalidRows(t *testing.T) {
	s := NewShares()
	assert.Error(t, s.Add(stats.VotingRow{Player: "a01", Year: 2001, PointsWon: 0, PointsMax: 10}))
	assert.Error(t, s.Add(stats.VotingRow{Player: "a01", Year: 2001, PointsWon: 11, PointsMax: 10}))
	assert.Error(t, s.Add(stats.VotingRow{Year: 2001, PointsWon: 1, PointsMax: 10}))
	assert.Zero(t, s.Len())
}

func mustEntry(t *testing.T, s *Shares, id stats.PlayerID) *Entry {
	t.Helper()
	e, ok := s.Entry(id)
	require.True(t, ok)
	return e
}

func TestParticipation(t *testing.T) {
	tests := []struct {
		games     float64
		teamGames int
		over50    bool
		over75    bool
	}{
		{70, 82, true, true},
		{61.5, 82, true, true},
		{61, 82, true, false},
		{41, 82, true, false},
		{40, 82, false, false},
		{0, 82, false, false},
		{10, 0, false, false},
	}

	for _, tt := range tests {
		over50, over75 := Participation(tt.games, tt.teamGames)
		assert.Equal(t, tt.over50, over50, "over50 for %v of %d", tt.games, tt.teamGames)
		assert.Equal(t, tt.over75, over75, "over75 for %v of %d", tt.games, tt.teamGames)
	}
}

func TestParticipation_Monotonic(t *testing.T) {
	for _, teamGames := range []int{50, 66, 72, 82} {
		prev50, prev75 := false, false
		for g := 0; g <= teamGames; g++ {
			over50, over75 := Participation(float64(g), teamGames)
			assert.False(t, prev50 && !over50, "over50 regressed at %d of %d", g, teamGames)
			assert.False(t, prev75 && !over75, "over75 regressed at %d of %d", g, teamGames)
			prev50, prev75 = over50, over75
		}
	}
}
