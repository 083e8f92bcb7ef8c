// Package winners loads the award-count reference table: a spreadsheet listing, per
// player code, how many times the player won the award.
package winners

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/award-shares/internal/stats"
)

// Default column headers.
const (
	DefaultCodeColumn  = "code"
	DefaultCountColumn = "num"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported winners file format")

// Table maps player ids to award counts.
type Table struct {
	counts map[stats.PlayerID]int
}

// Lookup returns the player's award count. ok is false for players not listed.
func (t *Table) Lookup(id stats.PlayerID) (int, bool) {
	if t == nil {
		return 0, false
	}
	n, ok := t.counts[id]
	return n, ok
}

// Len returns the number of players listed.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.counts)
}

type options struct {
	sheet       string
	codeColumn  string
	countColumn string
}

// Option configures Load.
type Option func(*options)

// WithSheet reads the named worksheet instead of the first one.
func WithSheet(name string) Option {
	return func(o *options) { o.sheet = name }
}

// WithColumns overrides the code and count column headers.
func WithColumns(code, count string) Option {
	return func(o *options) {
		if code != "" {
			o.codeColumn = code
		}
		if count != "" {
			o.countColumn = count
		}
	}
}

// Load reads a winners file. An empty path yields an empty table.
func Load(path string, opts ...Option) (*Table, error) {
	o := options{codeColumn: DefaultCodeColumn, countColumn: DefaultCountColumn}
	for _, opt := range opts {
		opt(&o)
	}

	if path == "" {
		return &Table{counts: map[stats.PlayerID]int{}}, nil
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path, o.sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	t, err := fromRows(rows, o)
	if err != nil {
		return nil, fmt.Errorf("loading winners %s: %w", path, err)
	}
	return t, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening winners workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("winners workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening winners file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading winners csv: %w", err)
	}
	return rows, nil
}

func fromRows(rows [][]string, o options) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("no header row")
	}

	codeCol, countCol := -1, -1
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		switch {
		case strings.EqualFold(h, o.codeColumn):
			codeCol = i
		case strings.EqualFold(h, o.countColumn):
			countCol = i
		}
	}
	if codeCol < 0 || countCol < 0 {
		return nil, fmt.Errorf("missing %q or %q column (have %q)", o.codeColumn, o.countColumn, rows[0])
	}

	t := &Table{counts: make(map[stats.PlayerID]int, len(rows)-1)}
	for i, row := range rows[1:] {
		line := i + 2
		code, count := cell(row, codeCol), cell(row, countCol)
		if code == "" && count == "" {
			continue
		}

		id, err := stats.ParsePlayerID(code)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		n, err := parseCount(count)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if _, dup := t.counts[id]; dup {
			return nil, fmt.Errorf("row %d: duplicate player %s", line, id)
		}
		t.counts[id] = n
	}
	return t, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseCount accepts integers and whole floats such as "2.0", as spreadsheets often
// store them.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid award count %q", s)
	}
	return int(f), nil
}
