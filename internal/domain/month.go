package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Lichess database host.
const DefaultBaseURL = "https://database.lichess.org"

const archiveExt = ".pgn.zst"

// Month identifies one monthly archive.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth validates year and month number.
func NewMonth(year int, month int) (Month, error) {
	if year <= 0 {
		return Month{}, fmt.Errorf("invalid year %d", year)
	}
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("invalid month %d", month)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// ParseMonthArg parses the CLI month argument ("3" or "03") for the given year.
func ParseMonthArg(year int, arg string) (Month, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" || len(arg) > 2 {
		return Month{}, fmt.Errorf("month %q: expected a month number between 01 and 12", arg)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return Month{}, fmt.Errorf("month %q: expected a month number between 01 and 12", arg)
	}
	return NewMonth(year, n)
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(value string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return Month{}, fmt.Errorf("month %q: expected YYYY-MM", value)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// String renders the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// MonthRange lists every month from..to inclusive, oldest first.
func MonthRange(from, to Month) ([]Month, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range start %s is after end %s", from, to)
	}
	var months []Month
	for m := from; !to.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months, nil
}

// Archive is the resolved location of one monthly archive.
type Archive struct {
	Variant  Variant
	Month    Month
	FileName string
	URL      string
}

// FileName derives the canonical archive file name, e.g.
// lichess_db_standard_rated_2022-03.pgn.zst.
func FileName(variant Variant, month Month) string {
	return fmt.Sprintf("lichess_db_%s_rated_%s%s", variant, month, archiveExt)
}

// URL derives the remote locator <baseURL>/<variant>/<file name>.
func URL(baseURL string, variant Variant, month Month) string {
	return strings.TrimRight(baseURL, "/") + "/" + string(variant) + "/" + FileName(variant, month)
}

// ResolveArchive derives file name and URL together.
func ResolveArchive(baseURL string, variant Variant, month Month) Archive {
	return Archive{
		Variant:  variant,
		Month:    month,
		FileName: FileName(variant, month),
		URL:      URL(baseURL, variant, month),
	}
}
