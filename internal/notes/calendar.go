package notes

import (
	"fmt"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"

	weeksPerMonth = 6
)

type Day struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	HasNote bool   `json:"hasNote"`
	Today   bool   `json:"today"`
}

// Month is a Monday-first grid of six weeks. Cells outside the month are nil.
type Month struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Name  string   `json:"name"`
	Weeks [][]*Day `json:"weeks"`
}

func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return 0, 0, fmt.Errorf("month must look like 2006-01: %w", err)
	}
	return t.Year(), t.Month(), nil
}

// BuildMonth lays out the given month, marking days present in noted and
// the day equal to today's date.
func BuildMonth(year int, month time.Month, noted map[string]bool, today time.Time) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	todayStr := today.Format(DayLayout)

	// Monday = 0 ... Sunday = 6
	offset := (int(first.Weekday()) + 6) % 7

	m := Month{
		Year:  year,
		Month: int(month),
		Name:  month.String(),
		Weeks: make([][]*Day, weeksPerMonth),
	}

	day := 1
	for w := 0; w < weeksPerMonth; w++ {
		week := make([]*Day, 7)
		for d := 0; d < 7; d++ {
			if (w == 0 && d < offset) || day > daysInMonth {
				continue
			}
			date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DayLayout)
			week[d] = &Day{
				Date:    date,
				Day:     day,
				HasNote: noted[date],
				Today:   date == todayStr,
			}
			day++
		}
		m.Weeks[w] = week
	}
	return m
}
