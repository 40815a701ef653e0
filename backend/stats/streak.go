package stats

import (
	"sort"
	"time"
)

// calendarDays is the fixed activity-calendar window ending at the as-of date.
const calendarDays = 365

// Streak status values. The UI keys off these strings, keep them stable.
const (
	StatusActiveToday     = "active_today"
	StatusActiveYesterday = "active_yesterday"
	StatusActive          = "active"
	StatusInactive        = "inactive"
)

// DayActivity is one calendar day's raw activity counters.
type DayActivity struct {
	Date             time.Time
	LessonsCompleted int
	QuizzesTaken     int
	NotesCreated     int
	TotalTimeSpent   int // minutes
}

// Active reports whether the day counts toward a streak: any counter > 0.
func (d DayActivity) Active() bool {
	return d.LessonsCompleted > 0 || d.QuizzesTaken > 0 || d.NotesCreated > 0 || d.TotalTimeSpent > 0
}

// ActivityScore weights the counters for heatmap intensity: lessons x3,
// quizzes x2, notes x1. The UI buckets the score at 0, 1-2, 3-5, 6-8 and 9+,
// so the weighting must stay stable.
func (d DayActivity) ActivityScore() int {
	return d.LessonsCompleted*3 + d.QuizzesTaken*2 + d.NotesCreated
}

// CalendarEntry is one day of the fixed 365-day activity calendar. Count is
// the derived activity score; inactive days are present with all zeros.
type CalendarEntry struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Lessons int    `json:"lessons"`
	Quizzes int    `json:"quizzes"`
	Notes   int    `json:"notes"`
	Minutes int    `json:"minutes"`
}

type StreakSummary struct {
	CurrentStreak    int             `json:"current_streak"`
	LongestStreak    int             `json:"longest_streak"`
	TotalActiveDays  int             `json:"total_active_days"`
	StreakStatus     string          `json:"streak_status"`
	ActivityCalendar []CalendarEntry `json:"activity_calendar"`
}

// ComputeStreak derives streak statistics and the 365-day activity calendar
// from per-day counters. The input does not have to be sorted or
// gap-free: days are keyed by calendar date, duplicates are merged by summing
// counters, and missing dates count as zero-activity days.
//
// The current streak walks backward from asOf with a one-day grace period: if
// asOf itself has no activity yet, the walk starts at the day before, so
// yesterday's unbroken run still counts as ongoing. A gap of two or more days
// always breaks the streak.
func ComputeStreak(days []DayActivity, asOf time.Time) *StreakSummary {
	byDate := make(map[time.Time]DayActivity, len(days))
	for _, d := range days {
		key := dateOnly(d.Date)
		merged := byDate[key]
		merged.Date = key
		merged.LessonsCompleted += d.LessonsCompleted
		merged.QuizzesTaken += d.QuizzesTaken
		merged.NotesCreated += d.NotesCreated
		merged.TotalTimeSpent += d.TotalTimeSpent
		byDate[key] = merged
	}

	active := func(date time.Time) bool {
		d, ok := byDate[date]
		return ok && d.Active()
	}

	today := dateOnly(asOf)
	yesterday := today.AddDate(0, 0, -1)

	// Current streak, with the grace day.
	start := today
	if !active(start) {
		start = yesterday
	}
	currentStreak := 0
	for date := start; active(date); date = date.AddDate(0, 0, -1) {
		currentStreak++
	}

	// Longest run over the whole history.
	var activeDates []time.Time
	for date, d := range byDate {
		if d.Active() {
			activeDates = append(activeDates, date)
		}
	}
	sort.Slice(activeDates, func(i, j int) bool { return activeDates[i].Before(activeDates[j]) })

	longestStreak := 0
	run := 0
	for i, date := range activeDates {
		if i > 0 && date.Sub(activeDates[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longestStreak {
			longestStreak = run
		}
	}
	if currentStreak > longestStreak {
		longestStreak = currentStreak
	}

	var status string
	switch {
	case active(today):
		status = StatusActiveToday
	case active(yesterday) && currentStreak > 0:
		status = StatusActiveYesterday
	case currentStreak > 0:
		status = StatusActive
	default:
		status = StatusInactive
	}

	// Fixed-length calendar, oldest first, ending at asOf.
	calendar := make([]CalendarEntry, 0, calendarDays)
	for i := calendarDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		d := byDate[date]
		calendar = append(calendar, CalendarEntry{
			Date:    date.Format("2006-01-02"),
			Count:   d.ActivityScore(),
			Lessons: d.LessonsCompleted,
			Quizzes: d.QuizzesTaken,
			Notes:   d.NotesCreated,
			Minutes: d.TotalTimeSpent,
		})
	}

	return &StreakSummary{
		CurrentStreak:    currentStreak,
		LongestStreak:    longestStreak,
		TotalActiveDays:  len(activeDates),
		StreakStatus:     status,
		ActivityCalendar: calendar,
	}
}

// dateOnly truncates a timestamp to its UTC calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
