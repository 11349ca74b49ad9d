package core

import (
	"fmt"
	"strings"
	"time"
)

// Assignment is a single graded (or not yet graded) unit of work.
type Assignment struct {
	Date           string  `json:"date"`
	Name           string  `json:"name"`
	LetterGrade    string  `json:"letter_grade"`
	PointsEarned   float64 `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
	Percentage     float64 `json:"percentage"`
	IsMissing      bool    `json:"is_missing"`
	IsExempt       bool    `json:"is_exempt"`
	IsNotIncluded  bool    `json:"is_not_included"`
	IsNotYetGraded bool    `json:"is_not_yet_graded"`
}

// NewAssignment builds an Assignment and derives the missing flag.
// An assignment is missing only when it scored zero out of a nonzero
// possible total and carries no exempt/not-included/not-yet-graded
// marker; the four conditions never co-occur.
func NewAssignment(
	date string,
	name string,
	letterGrade string,
	pointsEarned float64,
	pointsPossible float64,
	percentage float64,
	isExempt bool,
	isNotIncluded bool,
	isNotYetGraded bool,
) (Assignment, error) {
	if pointsEarned < 0 || pointsPossible < 0 {
		return Assignment{}, fmt.Errorf("negative score %v/%v for %q", pointsEarned, pointsPossible, name)
	}
	flags := 0
	for _, f := range []bool{isExempt, isNotIncluded, isNotYetGraded} {
		if f {
			flags++
		}
	}
	if flags > 1 {
		return Assignment{}, fmt.Errorf("conflicting status flags for %q", name)
	}

	isMissing := pointsEarned == 0 &&
		pointsPossible > 0 &&
		!isExempt && !isNotIncluded && !isNotYetGraded

	return Assignment{
		Date:           date,
		Name:           name,
		LetterGrade:    letterGrade,
		PointsEarned:   pointsEarned,
		PointsPossible: pointsPossible,
		Percentage:     percentage,
		IsMissing:      isMissing,
		IsExempt:       isExempt,
		IsNotIncluded:  isNotIncluded,
		IsNotYetGraded: isNotYetGraded,
	}, nil
}

// Course is one subject's progress report at a point in time.
type Course struct {
	Name         string       `json:"name"`
	Period       string       `json:"period"`
	Instructor   string       `json:"instructor"`
	OverallGrade string       `json:"overall_grade"`
	Assignments  []Assignment `json:"assignments"`
}

// GradeReport is the full snapshot assembled from one parse run.
// It is built fresh every run and replaced wholesale by the next one.
type GradeReport struct {
	LastUpdated   time.Time `json:"last_updated"`
	Student       string    `json:"student"`
	GradingPeriod string    `json:"grading_period"`
	Courses       []Course  `json:"courses"`
}

// IsEmpty reports whether the snapshot contains no courses at all.
// Callers use this to avoid overwriting a good persisted report.
func (r *GradeReport) IsEmpty() bool {
	return len(r.Courses) == 0
}

// MissingKeys returns the identity keys of all missing assignments,
// in report order.
func (r *GradeReport) MissingKeys() []string {
	var keys []string
	for _, c := range r.Courses {
		for _, a := range c.Assignments {
			if a.IsMissing {
				keys = append(keys, AssignmentKey(c.Name, a.Name, a.Date))
			}
		}
	}
	return keys
}

// AlertState is the durable record of which missing assignments have
// already triggered a notification. The diff engine produces a new
// value; persisting it is the caller's job.
type AlertState struct {
	AlertedMissing []string   `json:"alerted_missing"`
	LastRun        *time.Time `json:"last_run,omitempty"`
}

// AssignmentKey builds the stable identity of an assignment across
// snapshots: "{course}::{assignment}::{date}".
func AssignmentKey(course, assignment, date string) string {
	return course + "::" + assignment + "::" + date
}

// SplitAssignmentKey is the inverse of AssignmentKey. Keys that do not
// contain two separators come back with ok=false.
func SplitAssignmentKey(key string) (course, assignment, date string, ok bool) {
	parts := strings.SplitN(key, "::", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Event is a notification produced by the diff engine, either a
// MissingAlert or a ResolvedAlert.
type Event interface {
	Kind() string
}

// AlertItem is one assignment referenced by an alert event.
type AlertItem struct {
	Name string
	Date string
	Key  string
}

// CourseAlerts groups alert items under their course.
type CourseAlerts struct {
	Course      string
	Assignments []AlertItem
}

// MissingAlert announces assignments that became missing since the
// previous run. StillOutstanding counts previously alerted assignments
// that are still missing, so a notifier can mention them without
// re-announcing.
type MissingAlert struct {
	Student          string
	Courses          []CourseAlerts
	StillOutstanding int
}

// Kind identifies the event type for notifiers.
func (MissingAlert) Kind() string { return "missing" }

// ResolvedAlert reports previously alerted assignments that are no
// longer missing.
type ResolvedAlert struct {
	Student string
	Courses []CourseAlerts
}

// Kind identifies the event type for notifiers.
func (ResolvedAlert) Kind() string { return "resolved" }
