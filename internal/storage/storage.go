package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pfrederiksen/award-shares/internal/stats"
)

// Storage writes reports into an output directory.
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	dataDir, err := ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Dir returns the output directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// ReportPath returns the path of a report file. The default name is
// "<award>_shares.csv".
func (s *Storage) ReportPath(name string, award stats.Award) string {
	if name == "" {
		name = fmt.Sprintf("%s_shares.csv", award.Code)
	}
	return filepath.Join(s.dataDir, name)
}

// SaveReport writes the report CSV and returns its path. The file is replaced
// atomically.
func (s *Storage) SaveReport(name string, award stats.Award, summaries []stats.CareerSummary) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, award, summaries); err != nil {
		return "", err
	}

	path := s.ReportPath(name, award)
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Header returns the report columns for an award.
func Header(award stats.Award) []string {
	a := award.Label()
	return []string{
		"Code", "Player", "Seasons", "Games", "Minutes", "DWS",
		"Seasons_>50", "Seasons_>75",
		"Seasons_" + a, "Seasons_>50_" + a, "Seasons_>75_" + a,
		a + "_awards", a + "_shares",
	}
}

// Record formats one summary in Header order.
func Record(s stats.CareerSummary) []string {
	return []string{
		s.Player.String(),
		s.Name,
		strconv.Itoa(s.Seasons),
		FormatCount(s.Games),
		FormatCount(s.Minutes),
		strconv.FormatFloat(s.DWS, 'f', 1, 64),
		strconv.Itoa(s.Over50),
		strconv.Itoa(s.Over75),
		strconv.Itoa(s.AwardSeasons),
		strconv.Itoa(s.AwardOver50),
		strconv.Itoa(s.AwardOver75),
		strconv.Itoa(s.AwardsWon),
		FormatShare(s.CumulativeShare),
	}
}

// WriteCSV writes the header and one record per summary, in the given order.
func WriteCSV(w io.Writer, award stats.Award, summaries []stats.CareerSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(award)); err != nil {
		return fmt.Errorf("encoding report header: %w", err)
	}
	for _, s := range summaries {
		if err := cw.Write(Record(s)); err != nil {
			return fmt.Errorf("encoding report row %s: %w", s.Player, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// FormatShare rounds to six decimals and prints the shortest form.
func FormatShare(v float64) string {
	return strconv.FormatFloat(RoundShare(v), 'f', -1, 64)
}

// RoundShare rounds a cumulative share to six decimals.
func RoundShare(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// FormatCount prints games and minutes totals without a fraction when whole.
func FormatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
