// Package stats holds the pure progress, grading, analytics and streak
// computations. It takes plain snapshots fetched by the controllers and never
// touches the database or the HTTP layer, so everything here is safe to call
// concurrently and trivial to test.
package stats

import "math"

// LessonStatus is one lesson annotated with the querying user's completion flag.
type LessonStatus struct {
	LessonID  uint
	Completed bool
}

// ComputeProgress returns the completion percentage of a plan's lessons.
// An empty plan is 0%, never a division by zero; the result is always in [0,100].
func ComputeProgress(lessons []LessonStatus) float64 {
	if len(lessons) == 0 {
		return 0.0
	}

	completed := 0
	for _, l := range lessons {
		if l.Completed {
			completed++
		}
	}

	return round2(100 * float64(completed) / float64(len(lessons)))
}

// round2 rounds half away from zero to two decimals. Every percentage this
// package produces uses the same rule, so cached and recomputed values compare
// exactly.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
