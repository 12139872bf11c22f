// Package timeline converts between calendar dates and day indices and
// holds the defaults used when new entities are created.
package timeline

import "time"

// EpochDate is the project epoch in YYYY-MM-DD form.
const EpochDate = "2024-01-01"

// Epoch is day index 0.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// DateToDayIndex returns the number of calendar days between the epoch and t.
// Only the calendar date of t (in its own location) is considered.
func DateToDayIndex(t time.Time) int {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(date.Sub(Epoch) / day)
}

// DayIndexToDate returns the calendar date of a day index, at UTC midnight.
func DayIndexToDate(index int) time.Time {
	return Epoch.AddDate(0, 0, index)
}

// TodayDayIndex returns the day index of now.
func TodayDayIndex(now time.Time) int {
	return DateToDayIndex(now)
}

// ParseDate parses a YYYY-MM-DD date into a day index.
func ParseDate(s string) (int, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, err
	}
	return DateToDayIndex(t), nil
}

// FormatDayIndex renders a day index as YYYY-MM-DD.
func FormatDayIndex(index int) string {
	return DayIndexToDate(index).Format(time.DateOnly)
}

// Palette is the set of soft task bar colours, assigned round-robin.
var Palette = []string{
	"#93B5F7", // blue
	"#7DD3B6", // emerald
	"#FCD077", // amber
	"#F9A8A8", // coral
	"#BFA8F7", // violet
	"#F4A8CC", // pink
	"#7DD8E8", // cyan
	"#FCBB7D", // orange
	"#7DD3C4", // teal
	"#A5A7F5", // indigo
}

// ColorFor returns the palette colour for the n-th task.
func ColorFor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// Defaults for new entities.
const (
	DefaultProjectID   = "default"
	DefaultProjectName = "Project 01"
	DefaultTaskName    = "New task"
	DefaultDuration    = 3
	DefaultGroupName   = "New group"
)
