package core

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSampleEmail(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/sample_email.txt")
	require.NoError(t, err)
	return string(data)
}

func parseSample(t *testing.T) *ParsedReport {
	t.Helper()
	parsed, err := ParseReport(loadSampleEmail(t), time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return parsed
}

func findAssignment(t *testing.T, c Course, name string) Assignment {
	t.Helper()
	for _, a := range c.Assignments {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("assignment %q not found", name)
	return Assignment{}
}

func TestParseReport_Headers(t *testing.T) {
	parsed := parseSample(t)

	assert.Equal(t, "Layla H.", parsed.Student)
	assert.Equal(t, "Q3", parsed.GradingPeriod)
	assert.Equal(t, "Math 6", parsed.Course.Name)
	assert.Equal(t, "P1(A)", parsed.Course.Period)
	assert.Equal(t, "Motch, Michaela", parsed.Course.Instructor)
}

func TestParseReport_OverallGradeLiteralMarker(t *testing.T) {
	// The "**" in "Current overall grade**:" is part of the label, not
	// an annotation; the grade value must come through untouched.
	parsed := parseSample(t)
	assert.Equal(t, "D", parsed.Course.OverallGrade)
}

func TestParseReport_AssignmentCount(t *testing.T) {
	parsed := parseSample(t)
	assert.Len(t, parsed.Course.Assignments, 10)
	assert.Empty(t, parsed.LineErrors)
}

func TestParseReport_NormalAssignment(t *testing.T) {
	parsed := parseSample(t)

	a := parsed.Course.Assignments[0]
	assert.Equal(t, "2026-01-12", a.Date)
	assert.Equal(t, "5.3.4 Lesson", a.Name)
	assert.Equal(t, "A", a.LetterGrade)
	assert.Equal(t, 5.0, a.PointsEarned)
	assert.Equal(t, 5.0, a.PointsPossible)
	assert.Equal(t, 100.0, a.Percentage)
	assert.False(t, a.IsMissing)
}

func TestParseReport_FractionalScore(t *testing.T) {
	parsed := parseSample(t)

	a := findAssignment(t, parsed.Course, "Ch 5 Check #3")
	assert.Equal(t, 6.0, a.PointsEarned)
	assert.Equal(t, 9.0, a.PointsPossible)
	assert.InDelta(t, 66.67, a.Percentage, 0.001)
}

func TestParseReport_MissingAssignments(t *testing.T) {
	parsed := parseSample(t)

	for _, name := range []string{"6.1.1 RP", "6.1.2 RP"} {
		a := findAssignment(t, parsed.Course, name)
		assert.True(t, a.IsMissing, name)
		assert.Equal(t, 0.0, a.PointsEarned, name)
		assert.Equal(t, 10.0, a.PointsPossible, name)
	}
}

func TestParseReport_ExemptNotMissing(t *testing.T) {
	parsed := parseSample(t)

	a := findAssignment(t, parsed.Course, "Quiz 4")
	assert.True(t, a.IsExempt)
	assert.False(t, a.IsMissing)
	assert.Equal(t, 0.0, a.PointsEarned)
}

func TestParseReport_NotIncludedNotMissing(t *testing.T) {
	parsed := parseSample(t)

	a := findAssignment(t, parsed.Course, "Participation Notes")
	assert.True(t, a.IsNotIncluded)
	assert.False(t, a.IsMissing)
}

func TestParseReport_NotYetGraded(t *testing.T) {
	parsed := parseSample(t)

	a := findAssignment(t, parsed.Course, "Homework 7")
	assert.True(t, a.IsNotYetGraded)
	assert.False(t, a.IsMissing)
	assert.Equal(t, "*", a.LetterGrade)
	assert.Equal(t, 0.0, a.PointsEarned)
	assert.Equal(t, 9.0, a.PointsPossible)
	assert.Equal(t, 0.0, a.Percentage)
}

func TestParseReport_NotYetGradedSingleLine(t *testing.T) {
	body := "Course: Math 6\n    01/28/2026  Homework 7      Grade: *   (-/9)\n"
	parsed, err := ParseReport(body, time.Now())
	require.NoError(t, err)

	require.Len(t, parsed.Course.Assignments, 1)
	a := parsed.Course.Assignments[0]
	assert.True(t, a.IsNotYetGraded)
	assert.False(t, a.IsMissing)
	assert.Equal(t, 0.0, a.PointsEarned)
	assert.Equal(t, 9.0, a.PointsPossible)
}

func TestParseReport_ExtraCreditOver100(t *testing.T) {
	parsed := parseSample(t)

	a := findAssignment(t, parsed.Course, "Extra Credit: Bonus (Part 2)")
	assert.InDelta(t, 10.74, a.PointsEarned, 0.001)
	assert.Equal(t, 10.0, a.PointsPossible)
	assert.InDelta(t, 107.4, a.Percentage, 0.001)
	assert.False(t, a.IsMissing)
}

func TestParseReport_PunctuationInName(t *testing.T) {
	parsed := parseSample(t)

	a := findAssignment(t, parsed.Course, "Ch. 5: Review (Part 2)")
	assert.Equal(t, 8.0, a.PointsEarned)
	assert.Equal(t, "B", a.LetterGrade)
}

func TestParseReport_SortsAssignmentsByDate(t *testing.T) {
	body := "Course: Math 6\n" +
		"    01/27/2026  Later      Grade: A  (5/5 = 100%)\n" +
		"    01/12/2026  Earlier    Grade: A  (5/5 = 100%)\n"
	parsed, err := ParseReport(body, time.Now())
	require.NoError(t, err)

	require.Len(t, parsed.Course.Assignments, 2)
	assert.Equal(t, "Earlier", parsed.Course.Assignments[0].Name)
	assert.Equal(t, "Later", parsed.Course.Assignments[1].Name)
}

func TestParseReport_FlagExclusivity(t *testing.T) {
	parsed := parseSample(t)

	for _, a := range parsed.Course.Assignments {
		flags := 0
		for _, f := range []bool{a.IsMissing, a.IsExempt, a.IsNotIncluded, a.IsNotYetGraded} {
			if f {
				flags++
			}
		}
		assert.LessOrEqual(t, flags, 1, a.Name)
	}
}

func TestParseReport_MalformedLineCollected(t *testing.T) {
	body := "Course: Math 6\n" +
		"    01/12/2026  Good One      Grade: A  (5/5 = 100%)\n" +
		"    01/13/2026  Broken row without a grade\n" +
		"    13/45/2026  Bad Date      Grade: A  (5/5 = 100%)\n" +
		"    01/14/2026  Another Good  Grade: B  (4/5 = 80%)\n"
	parsed, err := ParseReport(body, time.Now())
	require.NoError(t, err)

	assert.Len(t, parsed.Course.Assignments, 2)
	require.Len(t, parsed.LineErrors, 2)

	var lineErr *MalformedLineError
	require.ErrorAs(t, parsed.LineErrors[0], &lineErr)
	assert.Equal(t, 3, lineErr.LineNum)
	assert.Contains(t, lineErr.Line, "Broken row")
}

func TestParseReport_HeaderMissingCourse(t *testing.T) {
	body := "Student: Layla H.\n" +
		"    01/12/2026  Something      Grade: A  (5/5 = 100%)\n"
	_, err := ParseReport(body, time.Now())

	var headerErr *HeaderMissingError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, "Course", headerErr.Field)
}

func TestParseReport_TotalParseFailure(t *testing.T) {
	_, err := ParseReport("nothing resembling a report\nat all\n", time.Now())
	assert.True(t, errors.Is(err, ErrTotalParseFailure))
}

func TestParseReport_UngradedScoreWithoutStarToken(t *testing.T) {
	// A dash score means not yet graded even when the grade token is
	// not the bare asterisk.
	body := "Course: Math 6\n    02/02/2026  Essay Draft      Grade: --  (-/20)\n"
	parsed, err := ParseReport(body, time.Now())
	require.NoError(t, err)

	require.Len(t, parsed.Course.Assignments, 1)
	a := parsed.Course.Assignments[0]
	assert.True(t, a.IsNotYetGraded)
	assert.False(t, a.IsMissing)
	assert.Equal(t, 20.0, a.PointsPossible)
}

func TestParseReport_ZeroOutOfZeroNotMissing(t *testing.T) {
	body := "Course: Math 6\n    02/03/2026  Placeholder      Grade: F  (0/0 = 0%)\n"
	parsed, err := ParseReport(body, time.Now())
	require.NoError(t, err)

	require.Len(t, parsed.Course.Assignments, 1)
	assert.False(t, parsed.Course.Assignments[0].IsMissing)
}

func TestParseReport_AnnotationOnGradeToken(t *testing.T) {
	body := "Course: Math 6\n    02/04/2026  Lab Report      Grade: F^  (0/15 = 0%)\n"
	parsed, err := ParseReport(body, time.Now())
	require.NoError(t, err)

	require.Len(t, parsed.Course.Assignments, 1)
	a := parsed.Course.Assignments[0]
	assert.True(t, a.IsExempt)
	assert.False(t, a.IsMissing)
	assert.Equal(t, "F", a.LetterGrade)
}
