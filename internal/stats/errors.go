package stats

import "fmt"

// SeasonFormatError is returned when a season label has no recognisable form.
type SeasonFormatError struct {
	Label string
}

func (e *SeasonFormatError) Error() string {
	return fmt.Sprintf("incorrect season format: %q", e.Label)
}

// MalformedRowError is returned when a numeric column holds non-numeric content
// after cleaning, or when a derived value falls outside its valid range.
type MalformedRowError struct {
	Table  string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *MalformedRowError) Error() string {
	msg := fmt.Sprintf("malformed row %d in %s: column %q has value %q", e.Row, e.Table, e.Column, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// UnknownTeamCodeError is returned when a team code has no entry in the mapping.
type UnknownTeamCodeError struct {
	Code string
}

func (e *UnknownTeamCodeError) Error() string {
	return fmt.Sprintf("unknown team code: %q", e.Code)
}

// TeamLookupError is returned when a resolved team name has no row in a season's
// team totals table.
type TeamLookupError struct {
	Team   string
	League string
	Year   int
}

func (e *TeamLookupError) Error() string {
	return fmt.Sprintf("team %q not found in %s %d team totals", e.Team, e.League, e.Year)
}
