package ingest

import (
	"strings"
	"unicode"

	"github.com/fortuna/courtside/internal/store"
)

// nicknames maps an NBA nickname to its league abbreviation.
var nicknames = map[string]string{
	"hawks":        "ATL",
	"celtics":      "BOS",
	"nets":         "BKN",
	"hornets":      "CHA",
	"bulls":        "CHI",
	"cavaliers":    "CLE",
	"mavericks":    "DAL",
	"nuggets":      "DEN",
	"pistons":      "DET",
	"warriors":     "GSW",
	"rockets":      "HOU",
	"pacers":       "IND",
	"clippers":     "LAC",
	"lakers":       "LAL",
	"grizzlies":    "MEM",
	"heat":         "MIA",
	"bucks":        "MIL",
	"timberwolves": "MIN",
	"pelicans":     "NOP",
	"knicks":       "NYK",
	"thunder":      "OKC",
	"magic":        "ORL",
	"76ers":        "PHI",
	"suns":         "PHX",
	"blazers":      "POR",
	"kings":        "SAC",
	"spurs":        "SAS",
	"raptors":      "TOR",
	"jazz":         "UTA",
	"wizards":      "WAS",
}

// Short forms some feeds use in place of the league abbreviation.
var abbreviationAliases = map[string]string{
	"GS":   "GSW",
	"SA":   "SAS",
	"NO":   "NOP",
	"NY":   "NYK",
	"UTAH": "UTA",
	"WSH":  "WAS",
	"PHO":  "PHX",
	"BRK":  "BKN",
}

// normalizeName lowercases and keeps letters and digits only.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeAbbreviation(abbr string) string {
	abbr = strings.ToUpper(strings.TrimSpace(abbr))
	if normalized, ok := abbreviationAliases[abbr]; ok {
		return normalized
	}
	return abbr
}

// abbreviationFor finds a league abbreviation inside a team name such as
// "Portland Trail Blazers". It returns "" for names it does not know.
func abbreviationFor(name string) string {
	for _, word := range strings.Fields(strings.ToLower(name)) {
		if abbr, ok := nicknames[strings.Trim(word, ".,")]; ok {
			return abbr
		}
	}
	return ""
}

// teamKeys returns the keys a team line can be matched on, strongest first.
func teamKeys(line TeamLine) []string {
	var keys []string
	add := func(k string) {
		if k == "" {
			return
		}
		for _, existing := range keys {
			if existing == k {
				return
			}
		}
		keys = append(keys, k)
	}

	add(normalizeName(line.Name))
	add(normalizeName(line.City + line.Name))
	if abbr := abbreviationFor(line.City + " " + line.Name); abbr != "" {
		add("abbr:" + abbr)
	}
	if line.Abbreviation != "" {
		add("abbr:" + normalizeAbbreviation(line.Abbreviation))
	}
	return keys
}

// matchTeam picks the stored team a box-score line refers to, or nil.
func matchTeam(teams []*store.Team, line TeamLine) *store.Team {
	want := teamKeys(line)
	for _, key := range want {
		for _, t := range teams {
			for _, have := range teamKeys(TeamLine{Name: t.Name, City: t.City}) {
				if key == have {
					return t
				}
			}
		}
	}
	return nil
}
