// Package country maps raw source identifiers to canonical country codes.
package country

import (
	"sort"
	"strings"
)

// Code is a canonical two-letter country code.
type Code string

const (
	US Code = "US"
	UK Code = "UK"
	JP Code = "JP"
	KR Code = "KR"
)

type alias struct {
	name string
	code Code
}

var aliases = []alias{
	{"fcc", US},
	{"ntia", US},
	{"federal communications commission", US},

	{"ofcom", UK},
	{"office of communications", UK},

	{"総務省", JP},
	{"soumu", JP},
	{"mic", JP},
	{"ministry of internal affairs and communications", JP},

	{"과기정통부", KR},
	{"과학기술정보통신부", KR},
	{"방통위", KR},
	{"방송통신위원회", KR},
	{"msit", KR},
	{"kcc", KR},
	{"ministry of science and ict", KR},
}

var exact = make(map[string]Code, len(aliases))

func init() {
	for _, a := range aliases {
		exact[a.name] = a.code
	}
	// Longest alias first so the most specific partial match wins, ties
	// broken lexicographically to keep matching order stable.
	sort.SliceStable(aliases, func(i, j int) bool {
		if len(aliases[i].name) != len(aliases[j].name) {
			return len(aliases[i].name) > len(aliases[j].name)
		}
		return aliases[i].name < aliases[j].name
	})
}

// Map resolves a raw source identifier to a country code. Matching is
// case-insensitive and whitespace-tolerant; after an exact lookup fails, a
// substring match in either direction is attempted, longest alias first.
// Unknown sources return ok=false, never an error: callers treat an unmapped
// source as unclassified.
func Map(source string) (Code, bool) {
	normalized := strings.ToLower(strings.TrimSpace(source))
	if normalized == "" {
		return "", false
	}

	if code, ok := exact[normalized]; ok {
		return code, true
	}

	for _, a := range aliases {
		if strings.Contains(normalized, a.name) || strings.Contains(a.name, normalized) {
			return a.code, true
		}
	}

	return "", false
}
