package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCourse() *Course {
	return &Course{
		Modules: []Module{
			{Title: "Basics", Lessons: []Lesson{
				{Title: "intro", Type: LessonTypeVideo},
				{Title: "docs", Type: LessonTypeDocument},
			}},
			{Title: "Advanced", Lessons: []Lesson{
				{Title: "quiz", Type: LessonTypeQuiz},
			}},
		},
	}
}

func TestTotalLessons(t *testing.T) {
	assert.Equal(t, 3, sampleCourse().TotalLessons())
	assert.Equal(t, 0, (&Course{}).TotalLessons())
}

func TestLessonAt(t *testing.T) {
	c := sampleCourse()

	lesson, ok := c.LessonAt(1, 0)
	require.True(t, ok)
	assert.Equal(t, "quiz", lesson.Title)

	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {1, 1}} {
		_, ok := c.LessonAt(idx[0], idx[1])
		assert.False(t, ok, "indices %v", idx)
	}
}

func TestLessonKeyRoundTrip(t *testing.T) {
	key := LessonKey(2, 5)
	assert.Equal(t, "2-5", key)

	moduleIdx, lessonIdx, err := ParseLessonKey(key)
	require.NoError(t, err)
	assert.Equal(t, 2, moduleIdx)
	assert.Equal(t, 5, lessonIdx)
}

func TestParseLessonKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "3", "a-b", "-1-2", "1-", "1-x"} {
		_, _, err := ParseLessonKey(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestValidLessonKey(t *testing.T) {
	c := sampleCourse()

	assert.True(t, c.ValidLessonKey("0-0"))
	assert.True(t, c.ValidLessonKey("1-0"))
	assert.False(t, c.ValidLessonKey("1-1"))
	assert.False(t, c.ValidLessonKey("9-0"))
	assert.False(t, c.ValidLessonKey("junk"))
}

func TestValidLessonType(t *testing.T) {
	for _, lt := range []string{LessonTypeVideo, LessonTypeDocument, LessonTypeLink, LessonTypeQuiz} {
		assert.True(t, ValidLessonType(lt))
	}
	assert.False(t, ValidLessonType("podcast"))
	assert.False(t, ValidLessonType(""))
}

func TestEnrollmentHasCompleted(t *testing.T) {
	e := &Enrollment{CompletedLessons: []string{"0-0", "1-2"}}

	assert.True(t, e.HasCompleted("1-2"))
	assert.False(t, e.HasCompleted("1-3"))
}
