package source

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var westernLayouts = []string{
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02",
	"02/01/2006",
}

var datePrefixes = []string{"Published:", "Last updated:", "Date:"}

// parseFlexibleDate parses the western date formats seen on FCC and Ofcom
// listing pages, tolerating common prefixes.
func parseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, prefix := range datePrefixes {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range westernLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	japaneseDateExpr = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	reiwaDateExpr    = regexp.MustCompile(`R(\d+)\.(\d{1,2})\.(\d{1,2})`)
)

// parseJapaneseDate parses Soumu date forms: "2025年11月25日" and the Reiwa
// era shorthand "R7.1.17" (Reiwa 1 = 2019).
func parseJapaneseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)

	if m := japaneseDateExpr.FindStringSubmatch(s); m != nil {
		return makeDate(m[1], m[2], m[3], 0)
	}

	if m := reiwaDateExpr.FindStringSubmatch(s); m != nil {
		return makeDate(m[1], m[2], m[3], 2018)
	}

	return time.Time{}, false
}

func makeDate(year, month, day string, yearOffset int) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	return time.Date(y+yearOffset, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}
