package stats

import "sort"

// actions maps a play-by-play event to the counter it bumps by one.
var actions = map[string]func(*Counters){
	"2pt_make":    func(c *Counters) { c.TwoPointsMade = 1 },
	"2pt_miss":    func(c *Counters) { c.TwoPointsMissed = 1 },
	"3pt_make":    func(c *Counters) { c.ThreePointsMade = 1 },
	"3pt_miss":    func(c *Counters) { c.ThreePointsMissed = 1 },
	"ft_make":     func(c *Counters) { c.FreeThrowMade = 1 },
	"ft_miss":     func(c *Counters) { c.FreeThrowMissed = 1 },
	"rebound":     func(c *Counters) { c.DefRebounds = 1 },
	"def_rebound": func(c *Counters) { c.DefRebounds = 1 },
	"off_rebound": func(c *Counters) { c.OffRebounds = 1 },
	"steal":       func(c *Counters) { c.Steals = 1 },
	"TO":          func(c *Counters) { c.Turnovers = 1 },
	"assist":      func(c *Counters) { c.Assists = 1 },
	"block":       func(c *Counters) { c.Blocks = 1 },
	"foul":        func(c *Counters) { c.Fouls = 1 },
}

// ActionDelta returns the one-unit delta for a play-by-play action.
// A plain "rebound" counts as defensive.
func ActionDelta(action string) (Counters, bool) {
	set, ok := actions[action]
	if !ok {
		return Counters{}, false
	}
	var c Counters
	set(&c)
	return c, true
}

// Actions lists the recognised action names, sorted.
func Actions() []string {
	out := make([]string, 0, len(actions))
	for a := range actions {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
