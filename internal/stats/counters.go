// Package stats holds the box-score counters and the in-memory aggregation
// over them: points, per-player totals and game scores.
package stats

// Counters are the 13 per-player, per-game tallies kept for every stat row.
type Counters struct {
	ThreePointsMade   int `json:"Three_Points_Made"`
	ThreePointsMissed int `json:"Three_Points_Missed"`
	TwoPointsMade     int `json:"Two_Points_Made"`
	TwoPointsMissed   int `json:"Two_Points_Missed"`
	FreeThrowMade     int `json:"Free_Throw_Made"`
	FreeThrowMissed   int `json:"Free_Throw_Missed"`
	Steals            int `json:"Steals"`
	Turnovers         int `json:"Turnovers"`
	Assists           int `json:"Assists"`
	Blocks            int `json:"Blocks"`
	Fouls             int `json:"Fouls"`
	OffRebounds       int `json:"Off_Rebounds"`
	DefRebounds       int `json:"Def_Rebounds"`
}

// Field describes one counter: its database column, its wire name and how
// to reach it on a Counters value.
type Field struct {
	Column string
	Name   string
	ref    func(*Counters) *int
}

// Get returns the field's value in c.
func (f Field) Get(c Counters) int { return *f.ref(&c) }

var fields = []Field{
	{"three_points_made", "Three_Points_Made", func(c *Counters) *int { return &c.ThreePointsMade }},
	{"three_points_missed", "Three_Points_Missed", func(c *Counters) *int { return &c.ThreePointsMissed }},
	{"two_points_made", "Two_Points_Made", func(c *Counters) *int { return &c.TwoPointsMade }},
	{"two_points_missed", "Two_Points_Missed", func(c *Counters) *int { return &c.TwoPointsMissed }},
	{"free_throw_made", "Free_Throw_Made", func(c *Counters) *int { return &c.FreeThrowMade }},
	{"free_throw_missed", "Free_Throw_Missed", func(c *Counters) *int { return &c.FreeThrowMissed }},
	{"steals", "Steals", func(c *Counters) *int { return &c.Steals }},
	{"turnovers", "Turnovers", func(c *Counters) *int { return &c.Turnovers }},
	{"assists", "Assists", func(c *Counters) *int { return &c.Assists }},
	{"blocks", "Blocks", func(c *Counters) *int { return &c.Blocks }},
	{"fouls", "Fouls", func(c *Counters) *int { return &c.Fouls }},
	{"off_rebounds", "Off_Rebounds", func(c *Counters) *int { return &c.OffRebounds }},
	{"def_rebounds", "Def_Rebounds", func(c *Counters) *int { return &c.DefRebounds }},
}

// Fields lists every counter in storage order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Add increments every counter in c by the matching counter in d.
func (c *Counters) Add(d Counters) {
	for _, f := range fields {
		*f.ref(c) += *f.ref(&d)
	}
}

// Sub returns c minus d, field by field.
func (c Counters) Sub(d Counters) Counters {
	out := c
	for _, f := range fields {
		*f.ref(&out) -= *f.ref(&d)
	}
	return out
}

// Points is 3 per made three, 2 per made two and 1 per made free throw.
func (c Counters) Points() int {
	return 3*c.ThreePointsMade + 2*c.TwoPointsMade + c.FreeThrowMade
}

// Rebounds is offensive plus defensive rebounds.
func (c Counters) Rebounds() int {
	return c.OffRebounds + c.DefRebounds
}

// Negative reports the wire name of the first counter below zero, if any.
func (c Counters) Negative() (string, bool) {
	for _, f := range fields {
		if *f.ref(&c) < 0 {
			return f.Name, true
		}
	}
	return "", false
}
