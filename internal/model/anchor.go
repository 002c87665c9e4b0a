package model

import "time"

type anchorKind uint8

const (
	anchorNone anchorKind = iota
	anchorDate
	anchorSeasonal
)

// Anchor places a task in time: either an exact calendar date or a month of
// the year with no year attached. The zero Anchor places the task nowhere.
type Anchor struct {
	date  CivilDate
	month time.Month
	kind  anchorKind
}

// ExactDate anchors a task to a single calendar day.
func ExactDate(d CivilDate) Anchor {
	return Anchor{kind: anchorDate, date: d}
}

// SeasonalMonth anchors a task to a month, every year.
func SeasonalMonth(m time.Month) Anchor {
	return Anchor{kind: anchorSeasonal, month: m}
}

// Date returns the anchor date when the anchor is an exact date.
func (a Anchor) Date() (CivilDate, bool) {
	return a.date, a.kind == anchorDate
}

// Month returns the reference month when the anchor is seasonal.
func (a Anchor) Month() (time.Month, bool) {
	return a.month, a.kind == anchorSeasonal
}

func (a Anchor) IsDated() bool    { return a.kind == anchorDate }
func (a Anchor) IsSeasonal() bool { return a.kind == anchorSeasonal }
func (a Anchor) IsZero() bool     { return a.kind == anchorNone }

// SpecificDate renders the wire value of a dated anchor, "" otherwise.
func (a Anchor) SpecificDate() string {
	if a.kind != anchorDate {
		return ""
	}
	return a.date.String()
}

// MonthReference renders the 0-based wire value of a seasonal anchor.
func (a Anchor) MonthReference() (int, bool) {
	if a.kind != anchorSeasonal {
		return 0, false
	}
	return int(a.month) - 1, true
}

// ParseAnchor builds an anchor from the two optional wire fields. Exactly one
// of them must be set.
func ParseAnchor(specificDate *string, monthReference *int) (Anchor, error) {
	hasDate := specificDate != nil && *specificDate != ""
	hasMonth := monthReference != nil
	switch {
	case hasDate && hasMonth:
		return Anchor{}, ErrAnchorConflict
	case !hasDate && !hasMonth:
		return Anchor{}, ErrAnchorRequired
	case hasDate:
		d, err := ParseDate(*specificDate)
		if err != nil {
			return Anchor{}, err
		}
		return ExactDate(d), nil
	default:
		if *monthReference < 0 || *monthReference > 11 {
			return Anchor{}, ErrInvalidMonth
		}
		return SeasonalMonth(time.Month(*monthReference + 1)), nil
	}
}
