package stats

import (
	"sort"
	"time"
)

// recentActivityLimit caps the recent-activity feed in the summary.
const recentActivityLimit = 10

// PlanProgress is one plan with its lessons' completion flags, as fetched for
// the querying user. Callers pass plans in the order they want them listed
// (most recently created first); Aggregate never reorders them.
type PlanProgress struct {
	PlanID    uint
	Topic     string
	CreatedAt time.Time
	Lessons   []LessonStatus
}

// CompletionRecord is one UserProgress row flattened for aggregation.
type CompletionRecord struct {
	LessonID    uint
	LessonTitle string
	Completed   bool
	CompletedAt *time.Time
	TimeSpent   int // minutes
}

// AttemptScore is one quiz attempt's final score.
type AttemptScore struct {
	Score float64
}

type PlanBreakdown struct {
	PlanID           uint      `json:"plan_id"`
	Topic            string    `json:"topic"`
	Progress         float64   `json:"progress"`
	TotalLessons     int       `json:"total_lessons"`
	CompletedLessons int       `json:"completed_lessons"`
	CreatedAt        time.Time `json:"created_at"`
}

type ActivityEntry struct {
	LessonTitle string    `json:"lesson_title"`
	CompletedAt time.Time `json:"completed_at"`
	TimeSpent   int       `json:"time_spent"`
}

type AnalyticsSummary struct {
	TotalPlans       int             `json:"total_plans"`
	TotalLessons     int             `json:"total_lessons"`
	CompletedLessons int             `json:"completed_lessons"`
	TotalTimeSpent   int             `json:"total_time_spent"`
	CompletionRate   float64         `json:"completion_rate"`
	AverageQuizScore float64         `json:"average_quiz_score"`
	RecentActivity   []ActivityEntry `json:"recent_activity"`
	PlansProgress    []PlanBreakdown `json:"plans_progress"`
}

// Aggregate computes a user's overall learning statistics from read-only
// snapshots of their plans, progress records and quiz attempts.
//
// AverageQuizScore over zero attempts is fixed to 0 rather than NaN so
// consumers never have to special-case an empty history. Negative time-spent
// values are clamped to 0 uniformly.
func Aggregate(plans []PlanProgress, records []CompletionRecord, attempts []AttemptScore) *AnalyticsSummary {
	summary := &AnalyticsSummary{
		TotalPlans:     len(plans),
		RecentActivity: []ActivityEntry{},
		PlansProgress:  make([]PlanBreakdown, 0, len(plans)),
	}

	for _, plan := range plans {
		completed := 0
		for _, l := range plan.Lessons {
			if l.Completed {
				completed++
			}
		}

		summary.TotalLessons += len(plan.Lessons)
		summary.PlansProgress = append(summary.PlansProgress, PlanBreakdown{
			PlanID:           plan.PlanID,
			Topic:            plan.Topic,
			Progress:         ComputeProgress(plan.Lessons),
			TotalLessons:     len(plan.Lessons),
			CompletedLessons: completed,
			CreatedAt:        plan.CreatedAt,
		})
	}

	// Time counts for every record, completed or not, so time accumulated
	// before a completion revert stays in the total.
	completions := make([]CompletionRecord, 0, len(records))
	for _, rec := range records {
		if rec.TimeSpent < 0 {
			rec.TimeSpent = 0
		}
		summary.TotalTimeSpent += rec.TimeSpent
		if !rec.Completed {
			continue
		}
		completions = append(completions, rec)
		summary.CompletedLessons++
	}

	if summary.TotalLessons > 0 {
		summary.CompletionRate = round2(100 * float64(summary.CompletedLessons) / float64(summary.TotalLessons))
	}

	if len(attempts) > 0 {
		var total float64
		for _, a := range attempts {
			total += a.Score
		}
		summary.AverageQuizScore = round2(total / float64(len(attempts)))
	}

	// Newest completions first; lesson id breaks timestamp ties so the feed
	// is deterministic.
	sort.SliceStable(completions, func(i, j int) bool {
		ti, tj := completedAt(completions[i]), completedAt(completions[j])
		if ti.Equal(tj) {
			return completions[i].LessonID > completions[j].LessonID
		}
		return ti.After(tj)
	})

	for i, rec := range completions {
		if i == recentActivityLimit {
			break
		}
		summary.RecentActivity = append(summary.RecentActivity, ActivityEntry{
			LessonTitle: rec.LessonTitle,
			CompletedAt: completedAt(rec),
			TimeSpent:   rec.TimeSpent,
		})
	}

	return summary
}

func completedAt(rec CompletionRecord) time.Time {
	if rec.CompletedAt == nil {
		return time.Time{}
	}
	return *rec.CompletedAt
}
