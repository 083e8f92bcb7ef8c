package bbref

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/award-shares/internal/stats"
	"github.com/pfrederiksen/award-shares/internal/table"
)

// Pages fetches site pages. *scraper.Scraper implements it.
type Pages interface {
	Document(ctx context.Context, url string) (*goquery.Document, error)
	TeamTotalsURL(league string, year int) string
	AwardsURL(year int) string
	PlayerURL(id stats.PlayerID) string
}

// lastABASeason is the final season of the ABA; later seasons only exist for the NBA.
const lastABASeason = 1976

// Source reads typed rows from the site.
type Source struct {
	pages   Pages
	locator table.Locator
}

// NewSource creates a Source over pages using the default table locator.
func NewSource(pages Pages) *Source {
	return &Source{pages: pages, locator: table.DefaultLocator}
}

func (s *Source) extract(ctx context.Context, url, id string) (*table.Dataset, error) {
	doc, err := s.pages.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	ds, err := table.ExtractWith(doc, id, s.locator)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", url, err)
	}
	return ds, nil
}

// Voting returns the award's voting rows for a season year.
func (s *Source) Voting(ctx context.Context, award stats.Award, year int) ([]stats.VotingRow, error) {
	ds, err := s.extract(ctx, s.pages.AwardsURL(year), award.TableID)
	if err != nil {
		return nil, err
	}
	return ParseVoting(ds, year)
}

// PlayerSeasons returns a player's cleaned season log.
func (s *Source) PlayerSeasons(ctx context.Context, id stats.PlayerID) ([]stats.SeasonRow, error) {
	ds, err := s.extract(ctx, s.pages.PlayerURL(id), SeasonLogTable)
	if err != nil {
		return nil, err
	}
	rows, err := ParseSeasons(ds)
	if err != nil {
		return nil, fmt.Errorf("player %s: %w", id, err)
	}
	return rows, nil
}

// TeamSeason returns the team totals of one league season.
func (s *Source) TeamSeason(ctx context.Context, league string, year int) (*stats.TeamSeason, error) {
	if err := ValidateLeague(league, year); err != nil {
		return nil, err
	}
	ds, err := s.extract(ctx, s.pages.TeamTotalsURL(league, year), TeamTotalsTable)
	if err != nil {
		return nil, err
	}
	return ParseTeamSeason(ds, league, year)
}

// ValidateLeague rejects leagues that did not exist in a season.
func ValidateLeague(league string, year int) error {
	lg := strings.ToUpper(strings.TrimSpace(league))
	if lg == "" {
		return fmt.Errorf("empty league code for %d", year)
	}
	if year > lastABASeason && lg != "NBA" {
		return fmt.Errorf("incorrect league code %q for %d", league, year)
	}
	return nil
}
