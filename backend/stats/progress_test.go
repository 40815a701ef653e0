package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeProgressEmptyPlan(t *testing.T) {
	assert.Equal(t, 0.0, ComputeProgress(nil))
	assert.Equal(t, 0.0, ComputeProgress([]LessonStatus{}))
}

func TestComputeProgressHalfCompleted(t *testing.T) {
	lessons := []LessonStatus{
		{LessonID: 1, Completed: true},
		{LessonID: 2, Completed: true},
		{LessonID: 3, Completed: false},
		{LessonID: 4, Completed: false},
	}

	assert.Equal(t, 50.0, ComputeProgress(lessons))
}

func TestComputeProgressRounding(t *testing.T) {
	lessons := []LessonStatus{
		{LessonID: 1, Completed: true},
		{LessonID: 2, Completed: false},
		{LessonID: 3, Completed: false},
	}

	// 100/3 rounded to two decimals
	assert.Equal(t, 33.33, ComputeProgress(lessons))
}

func TestComputeProgressBounds(t *testing.T) {
	for n := 0; n <= 20; n++ {
		for k := 0; k <= n; k++ {
			lessons := make([]LessonStatus, n)
			for i := range lessons {
				lessons[i] = LessonStatus{LessonID: uint(i + 1), Completed: i < k}
			}

			progress := ComputeProgress(lessons)
			assert.GreaterOrEqual(t, progress, 0.0)
			assert.LessOrEqual(t, progress, 100.0)

			if n > 0 {
				assert.InDelta(t, 100*float64(k)/float64(n), progress, 0.005)
			} else {
				assert.Equal(t, 0.0, progress)
			}
		}
	}
}

func TestComputeProgressAllCompleted(t *testing.T) {
	lessons := []LessonStatus{
		{LessonID: 1, Completed: true},
		{LessonID: 2, Completed: true},
	}

	assert.Equal(t, 100.0, ComputeProgress(lessons))
}
