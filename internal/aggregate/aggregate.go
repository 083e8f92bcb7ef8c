package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/award-shares/internal/logger"
	"github.com/pfrederiksen/award-shares/internal/metrics"
	"github.com/pfrederiksen/award-shares/internal/stats"
)

// Defaults for Options.
const (
	DefaultWorkers = 4
	DefaultLeague  = "NBA"
)

// VotingSource returns one year's voting rows for an award.
type VotingSource interface {
	Voting(ctx context.Context, award stats.Award, year int) ([]stats.VotingRow, error)
}

// SeasonSource returns a player's cleaned season log.
type SeasonSource interface {
	PlayerSeasons(ctx context.Context, id stats.PlayerID) ([]stats.SeasonRow, error)
}

// TeamSource returns the team totals of one league season.
type TeamSource interface {
	TeamSeason(ctx context.Context, league string, year int) (*stats.TeamSeason, error)
}

// Source is everything a run reads. *bbref.Source implements it.
type Source interface {
	VotingSource
	SeasonSource
	TeamSource
}

// AwardCounts looks up how many times a player won the award. A miss is not an
// error; the player is counted as having won none.
type AwardCounts interface {
	Lookup(id stats.PlayerID) (int, bool)
}

// Options configures a run.
type Options struct {
	Award     stats.Award
	League    string // for season rows without a league
	StartYear int    // defaults to the award's inception year
	EndYear   int    // defaults to the current year
	Workers   int
	FailFast  bool
	Metrics   *metrics.Recorder
}

// Skip records a voting year or a player left out of the report.
type Skip struct {
	Player stats.PlayerID // empty for a skipped voting year
	Year   int            // zero for a skipped player
	Err    error
}

func (s Skip) String() string {
	if s.Player == "" {
		return fmt.Sprintf("voting %d: %v", s.Year, s.Err)
	}
	if s.Year != 0 {
		return fmt.Sprintf("player %s (%d): %v", s.Player, s.Year, s.Err)
	}
	return fmt.Sprintf("player %s: %v", s.Player, s.Err)
}

// Result is the outcome of a run.
type Result struct {
	Award     stats.Award
	StartYear int
	EndYear   int
	Summaries []stats.CareerSummary
	Skipped   []Skip
}

// Aggregator builds career summaries for one award.
type Aggregator struct {
	src    Source
	counts AwardCounts
	opts   Options
	teams  *teamCache
}

// New creates an Aggregator. counts may be nil.
func New(src Source, counts AwardCounts, opts Options) *Aggregator {
	if opts.StartYear < opts.Award.Inception {
		opts.StartYear = opts.Award.Inception
	}
	if opts.EndYear == 0 {
		opts.EndYear = time.Now().Year()
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.League == "" {
		opts.League = DefaultLeague
	}
	return &Aggregator{
		src:    src,
		counts: counts,
		opts:   opts,
		teams:  newTeamCache(src),
	}
}

// Run accumulates shares over the year range and summarises every voted player.
// Without FailFast, failing years and players are skipped and listed in the result.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	if a.opts.StartYear > a.opts.EndYear {
		return nil, fmt.Errorf("start year %d is after end year %d", a.opts.StartYear, a.opts.EndYear)
	}

	shares, skipped, err := a.Accumulate(ctx)
	if err != nil {
		return nil, err
	}

	summaries, playerSkips, err := a.Summarise(ctx, shares)
	if err != nil {
		return nil, err
	}

	logger.Info("Aggregation complete", logger.Fields{
		"award":   a.opts.Award.Code,
		"players": len(summaries),
		"skipped": len(skipped) + len(playerSkips),
		"teams":   a.teams.size(),
	})
	a.opts.Metrics.ReportRows(len(summaries))

	return &Result{
		Award:     a.opts.Award,
		StartYear: a.opts.StartYear,
		EndYear:   a.opts.EndYear,
		Summaries: summaries,
		Skipped:   append(skipped, playerSkips...),
	}, nil
}

// Accumulate reads every voting year in order and sums each player's shares. A
// current-season voting page that is not published yet is passed over without a skip.
func (a *Aggregator) Accumulate(ctx context.Context) (*Shares, []Skip, error) {
	shares := NewShares()
	var skipped []Skip
	current := time.Now().Year()

	for year := a.opts.StartYear; year <= a.opts.EndYear; year++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		rows, err := a.src.Voting(ctx, a.opts.Award, year)
		if err != nil && year == current && notPublished(err) {
			logger.Info("Voting not published yet", logger.Fields{
				"award": a.opts.Award.Code,
				"year":  year,
			})
			continue
		}
		if err != nil {
			if a.opts.FailFast || ctx.Err() != nil {
				return nil, nil, fmt.Errorf("reading %s voting %d: %w", a.opts.Award.Code, year, err)
			}
			logger.Warn("Skipping voting year", logger.Fields{
				"award": a.opts.Award.Code,
				"year":  year,
				"error": err.Error(),
			})
			a.opts.Metrics.YearSkipped()
			skipped = append(skipped, Skip{Year: year, Err: err})
			continue
		}

		for _, row := range rows {
			if err := shares.Add(row); err != nil {
				if a.opts.FailFast {
					return nil, nil, fmt.Errorf("adding %s share %d: %w", row.Player, year, err)
				}
				logger.Warn("Skipping voting row", logger.Fields{
					"player": row.Player.String(),
					"year":   year,
					"error":  err.Error(),
				})
				skipped = append(skipped, Skip{Player: row.Player, Year: year, Err: err})
			}
		}

		logger.Debug("Accumulated voting year", logger.Fields{
			"award":      a.opts.Award.Code,
			"year":       year,
			"candidates": len(rows),
		})
	}

	return shares, skipped, nil
}

// Summarise builds the career summary of every player in shares using a bounded
// pool of workers. Summaries are sorted by cumulative share, highest first, then
// by player id.
func (a *Aggregator) Summarise(ctx context.Context, shares *Shares) ([]stats.CareerSummary, []Skip, error) {
	var (
		mu        sync.Mutex
		summaries = make([]stats.CareerSummary, 0, shares.Len())
		skipped   []Skip
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for _, id := range shares.Players() {
		entry, _ := shares.Entry(id)
		g.Go(func() error {
			sum, err := a.summarise(gctx, entry)
			a.opts.Metrics.Player(err != nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if a.opts.FailFast || ctx.Err() != nil {
					return fmt.Errorf("summarising %s: %w", id, err)
				}
				logger.Warn("Skipping player", logger.Fields{
					"player": id.String(),
					"name":   entry.Name,
					"error":  err.Error(),
				})
				skipped = append(skipped, Skip{Player: id, Err: err})
				return nil
			}
			summaries = append(summaries, sum)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	SortSummaries(summaries)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Player < skipped[j].Player })
	return summaries, skipped, nil
}

func (a *Aggregator) summarise(ctx context.Context, entry *Entry) (stats.CareerSummary, error) {
	sum := stats.CareerSummary{
		Player:          entry.Player,
		Name:            entry.Name,
		CumulativeShare: entry.Total(),
	}

	rows, err := a.src.PlayerSeasons(ctx, entry.Player)
	if err != nil {
		return sum, err
	}

	for _, row := range rows {
		teamGames, err := a.teamGames(ctx, row)
		if err != nil {
			return sum, fmt.Errorf("season %s: %w", stats.SeasonLabel(row.Year), err)
		}
		addSeason(&sum, row, teamGames, a.opts.Award.Eligible(row.Year))
	}

	if a.counts != nil {
		if n, ok := a.counts.Lookup(entry.Player); ok {
			sum.AwardsWon = n
		}
	}
	return sum, nil
}

// teamGames returns the number of games the player's team played that season. A
// combined-team row uses the longest season of any team.
func (a *Aggregator) teamGames(ctx context.Context, row stats.SeasonRow) (int, error) {
	league := row.League
	if league == "" {
		league = a.opts.League
	}
	table, err := a.teams.get(ctx, league, row.Year)
	if err != nil {
		return 0, err
	}
	if row.Combined() {
		return table.MaxGames(), nil
	}
	name, err := stats.TeamName(row.Team)
	if err != nil {
		return 0, err
	}
	return table.TeamGames(name)
}

// notPublished reports whether err says the page or table does not exist.
func notPublished(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}

func addSeason(sum *stats.CareerSummary, row stats.SeasonRow, teamGames int, eligible bool) {
	over50, over75 := Participation(row.Games, teamGames)

	sum.Seasons++
	sum.Games += row.Games
	sum.Minutes += row.Minutes
	sum.DWS += row.DWS
	if over50 {
		sum.Over50++
	}
	if over75 {
		sum.Over75++
	}
	if !eligible {
		return
	}
	sum.AwardSeasons++
	if over50 {
		sum.AwardOver50++
	}
	if over75 {
		sum.AwardOver75++
	}
}

// SortSummaries orders summaries by cumulative share, highest first, then by
// player id.
func SortSummaries(s []stats.CareerSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].CumulativeShare != s[j].CumulativeShare {
			return s[i].CumulativeShare > s[j].CumulativeShare
		}
		return s[i].Player < s[j].Player
	})
}
