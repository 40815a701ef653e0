package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(day int) *time.Time {
	t := time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestAggregateEmptyInput(t *testing.T) {
	summary := Aggregate(nil, nil, nil)

	assert.Equal(t, 0, summary.TotalPlans)
	assert.Equal(t, 0, summary.TotalLessons)
	assert.Equal(t, 0.0, summary.CompletionRate)
	assert.Equal(t, 0.0, summary.AverageQuizScore)
	assert.Empty(t, summary.RecentActivity)
	assert.Empty(t, summary.PlansProgress)
}

func TestAggregateZeroAttemptsAverageIsZero(t *testing.T) {
	plans := []PlanProgress{{PlanID: 1, Topic: "Go", Lessons: []LessonStatus{{LessonID: 1}}}}

	summary := Aggregate(plans, nil, nil)
	assert.Equal(t, 0.0, summary.AverageQuizScore)
	assert.False(t, summary.AverageQuizScore != summary.AverageQuizScore, "average must not be NaN")
}

func TestAggregateEmptyPlan(t *testing.T) {
	plans := []PlanProgress{{PlanID: 7, Topic: "Rust"}}

	summary := Aggregate(plans, nil, nil)
	assert.Equal(t, 1, summary.TotalPlans)
	assert.Equal(t, 0, summary.TotalLessons)
	assert.Equal(t, 0.0, summary.CompletionRate)
	assert.Equal(t, 0.0, summary.PlansProgress[0].Progress)
}

func TestAggregateTotals(t *testing.T) {
	plans := []PlanProgress{
		{
			PlanID: 2, Topic: "SQL", CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Lessons: []LessonStatus{
				{LessonID: 3, Completed: true},
				{LessonID: 4, Completed: false},
			},
		},
		{
			PlanID: 1, Topic: "Go", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			Lessons: []LessonStatus{
				{LessonID: 1, Completed: true},
				{LessonID: 2, Completed: true},
			},
		},
	}
	records := []CompletionRecord{
		{LessonID: 1, LessonTitle: "Intro", Completed: true, CompletedAt: ts(1), TimeSpent: 30},
		{LessonID: 2, LessonTitle: "Types", Completed: true, CompletedAt: ts(2), TimeSpent: 45},
		{LessonID: 3, LessonTitle: "Joins", Completed: true, CompletedAt: ts(3), TimeSpent: 20},
		{LessonID: 4, LessonTitle: "Index", Completed: false, TimeSpent: 10},
	}
	attempts := []AttemptScore{{Score: 80}, {Score: 60}}

	summary := Aggregate(plans, records, attempts)

	assert.Equal(t, 2, summary.TotalPlans)
	assert.Equal(t, 4, summary.TotalLessons)
	assert.Equal(t, 3, summary.CompletedLessons)
	assert.Equal(t, 75.0, summary.CompletionRate)
	assert.Equal(t, 105, summary.TotalTimeSpent)
	assert.Equal(t, 70.0, summary.AverageQuizScore)

	// Plans stay in the order the caller supplied.
	assert.Equal(t, uint(2), summary.PlansProgress[0].PlanID)
	assert.Equal(t, 50.0, summary.PlansProgress[0].Progress)
	assert.Equal(t, uint(1), summary.PlansProgress[1].PlanID)
	assert.Equal(t, 100.0, summary.PlansProgress[1].Progress)
}

func TestAggregateRecentActivityOrderAndLimit(t *testing.T) {
	var records []CompletionRecord
	for i := 1; i <= 15; i++ {
		records = append(records, CompletionRecord{
			LessonID:    uint(i),
			LessonTitle: "Lesson",
			Completed:   true,
			CompletedAt: ts(i),
			TimeSpent:   10,
		})
	}
	// Two records share a timestamp; higher lesson id wins the tie.
	records = append(records, CompletionRecord{
		LessonID: 99, LessonTitle: "Tie", Completed: true, CompletedAt: ts(15), TimeSpent: 5,
	})

	summary := Aggregate(nil, records, nil)

	assert.Len(t, summary.RecentActivity, 10)
	assert.Equal(t, "Tie", summary.RecentActivity[0].LessonTitle)
	assert.Equal(t, *ts(15), summary.RecentActivity[1].CompletedAt)
	for i := 1; i < len(summary.RecentActivity); i++ {
		assert.False(t, summary.RecentActivity[i].CompletedAt.After(summary.RecentActivity[i-1].CompletedAt))
	}
}

func TestAggregateCountsTimeOfUncompletedRecords(t *testing.T) {
	// A reverted completion keeps its accumulated time; it must stay in the
	// total even though the lesson no longer counts as completed.
	records := []CompletionRecord{
		{LessonID: 1, Completed: false, TimeSpent: 30},
		{LessonID: 2, Completed: true, CompletedAt: ts(2), TimeSpent: 15},
	}

	summary := Aggregate(nil, records, nil)
	assert.Equal(t, 45, summary.TotalTimeSpent)
	assert.Equal(t, 1, summary.CompletedLessons)
	assert.Len(t, summary.RecentActivity, 1)
}

func TestAggregateClampsNegativeTimeSpent(t *testing.T) {
	records := []CompletionRecord{
		{LessonID: 1, Completed: true, CompletedAt: ts(1), TimeSpent: -30},
		{LessonID: 2, Completed: true, CompletedAt: ts(2), TimeSpent: 15},
	}

	summary := Aggregate(nil, records, nil)
	assert.Equal(t, 15, summary.TotalTimeSpent)
	assert.Equal(t, 0, summary.RecentActivity[1].TimeSpent)
}
