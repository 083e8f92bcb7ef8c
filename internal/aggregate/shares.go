package aggregate

import (
	"fmt"
	"sort"

	"github.com/pfrederiksen/award-shares/internal/stats"
)

// Entry is one player's accumulated voting record.
type Entry struct {
	Player stats.PlayerID
	Name   string
	years  map[int]float64
}

// Total returns the sum of the player's shares. Years are summed in ascending order
// so the result does not depend on the order rows were added.
func (e *Entry) Total() float64 {
	years := e.Years()
	total := 0.0
	for _, y := range years {
		total += e.years[y]
	}
	return total
}

// Years returns the voting years the player appeared in, ascending.
func (e *Entry) Years() []int {
	years := make([]int, 0, len(e.years))
	for y := range e.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Shares accumulates award shares by player. It is not safe for concurrent writes;
// it is filled before any worker reads it.
type Shares struct {
	entries map[stats.PlayerID]*Entry
}

// NewShares returns an empty accumulator.
func NewShares() *Shares {
	return &Shares{entries: make(map[stats.PlayerID]*Entry)}
}

// Add adds a voting row's share. The first row for a player starts their entry.
func (s *Shares) Add(row stats.VotingRow) error {
	if row.Player == "" {
		return fmt.Errorf("voting row %d: empty player id", row.Year)
	}
	share, err := row.Share()
	if err != nil {
		return err
	}

	e, ok := s.entries[row.Player]
	if !ok {
		e = &Entry{Player: row.Player, Name: row.Name, years: make(map[int]float64)}
		s.entries[row.Player] = e
	}
	e.years[row.Year] += share
	return nil
}

// Entry returns a player's entry.
func (s *Shares) Entry(id stats.PlayerID) (*Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Total returns a player's cumulative share, 0 for unknown players.
func (s *Shares) Total(id stats.PlayerID) float64 {
	if e, ok := s.entries[id]; ok {
		return e.Total()
	}
	return 0
}

// Players returns every player id in ascending order.
func (s *Shares) Players() []stats.PlayerID {
	ids := make([]stats.PlayerID, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of players.
func (s *Shares) Len() int {
	return len(s.entries)
}
