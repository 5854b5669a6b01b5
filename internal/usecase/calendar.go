package usecase

import "time"

// Calendar maps instants onto calendar days in a fixed location. Days are represented as
// midnight UTC of the local calendar date so they compare with Equal regardless of zone.
type Calendar struct {
	Location *time.Location
	Clock    func() time.Time
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Location: loc, Clock: time.Now}
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c Calendar) Now() time.Time {
	if c.Clock == nil {
		return time.Now().UTC()
	}
	return c.Clock().UTC()
}

// Day returns the calendar day containing t.
func (c Calendar) Day(t time.Time) time.Time {
	y, m, d := t.In(c.loc()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (c Calendar) Today() time.Time {
	return c.Day(c.Now())
}

// Bounds returns the half open instant range [from, to) covering the calendar day of t.
func (c Calendar) Bounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(c.loc()).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, c.loc())
	return from.UTC(), from.AddDate(0, 0, 1).UTC()
}
