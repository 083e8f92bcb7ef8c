package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/award-shares/internal/aggregate"
	"github.com/pfrederiksen/award-shares/internal/config"
	"github.com/pfrederiksen/award-shares/internal/storage"
	"github.com/pfrederiksen/award-shares/internal/stats"
)

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time      `json:"generated_at"`
	RunID       string         `json:"run_id"`
	Award       string         `json:"award"`
	StartYear   int            `json:"start_year"`
	EndYear     int            `json:"end_year"`
	Report      string         `json:"report"`
	PlayerCount int            `json:"player_count"`
	Players     []PlayerOutput `json:"players"`
	Skipped     []string       `json:"skipped,omitempty"`
}

// PlayerOutput is one report row.
type PlayerOutput struct {
	Code         string  `json:"code"`
	Player       string  `json:"player"`
	Seasons      int     `json:"seasons"`
	Games        float64 `json:"games"`
	Minutes      float64 `json:"minutes"`
	DWS          float64 `json:"dws"`
	Over50       int     `json:"seasons_over_50"`
	Over75       int     `json:"seasons_over_75"`
	AwardSeasons int     `json:"award_seasons"`
	AwardOver50  int     `json:"award_seasons_over_50"`
	AwardOver75  int     `json:"award_seasons_over_75"`
	Awards       int     `json:"awards"`
	Shares       float64 `json:"shares"`
}

func newOutputResult(res *aggregate.Result, report, runID string, now time.Time) *OutputResult {
	out := &OutputResult{
		GeneratedAt: now.UTC(),
		RunID:       runID,
		Award:       res.Award.Code,
		StartYear:   res.StartYear,
		EndYear:     res.EndYear,
		Report:      report,
		PlayerCount: len(res.Summaries),
		Players:     make([]PlayerOutput, 0, len(res.Summaries)),
	}
	for _, s := range res.Summaries {
		out.Players = append(out.Players, playerOutput(s))
	}
	for _, skip := range res.Skipped {
		out.Skipped = append(out.Skipped, skip.String())
	}
	return out
}

func playerOutput(s stats.CareerSummary) PlayerOutput {
	return PlayerOutput{
		Code:         s.Player.String(),
		Player:       s.Name,
		Seasons:      s.Seasons,
		Games:        s.Games,
		Minutes:      s.Minutes,
		DWS:          s.DWS,
		Over50:       s.Over50,
		Over75:       s.Over75,
		AwardSeasons: s.AwardSeasons,
		AwardOver50:  s.AwardOver50,
		AwardOver75:  s.AwardOver75,
		Awards:       s.AwardsWon,
		Shares:       storage.RoundShare(s.CumulativeShare),
	}
}

// WriteOutput writes the result in the specified format. top limits the rows of
// the table rendering; 0 means all.
func WriteOutput(w io.Writer, res *aggregate.Result, out *OutputResult, format string, top int) error {
	switch format {
	case config.FormatJSON:
		return writeJSON(w, out)
	case config.FormatTable:
		return writeTable(w, res, top)
	case config.FormatCSV:
		return writeSummary(w, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, out *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeTable renders the leading report rows as a terminal table.
func writeTable(w io.Writer, res *aggregate.Result, top int) error {
	header := storage.Header(res.Award)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(toRow(header))
	for i, s := range res.Summaries {
		if top > 0 && i >= top {
			break
		}
		t.AppendRow(toRow(storage.Record(s)))
	}
	if top > 0 && len(res.Summaries) > top {
		t.AppendFooter(table.Row{fmt.Sprintf("%d more", len(res.Summaries)-top)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// writeSummary prints where the CSV report went.
func writeSummary(w io.Writer, out *OutputResult) error {
	if _, err := fmt.Fprintf(w, "Wrote %d players to %s\n", out.PlayerCount, out.Report); err != nil {
		return err
	}
	if len(out.Skipped) > 0 {
		fmt.Fprintf(w, "\nSkipped %d:\n", len(out.Skipped))
		for _, s := range out.Skipped {
			fmt.Fprintf(w, "  %s\n", s)
		}
	}
	return nil
}
