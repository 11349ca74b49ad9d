package core

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParsedReport is the result of parsing one progress-report email.
// LineErrors carries the per-line failures the parser skipped over;
// the Course is best-effort complete regardless.
type ParsedReport struct {
	Student       string
	GradingPeriod string
	Course        Course
	ReceivedAt    time.Time
	LineErrors    []error
}

// Assignment lines look like:
//
//	01/12/2026  5.3.4 Lesson                           Grade: A  (5/5 = 100%)
//
// The name may contain colons, periods and parentheses, so the match
// anchors on the trailing "Grade: <token>  (<score>)" instead of
// splitting from the left.
var assignmentRe = regexp.MustCompile(`^\s+(\d{2}/\d{2}/\d{4})\s+(.+?)\s{2,}Grade:\s+(\S+)\s+\((.+)\)\s*$`)

// Not-yet-graded lines use a bare asterisk token and a dash score:
//
//	01/28/2026  Homework 7                             Grade: *   (-/9)
var notYetGradedRe = regexp.MustCompile(`^\s+(\d{2}/\d{2}/\d{4})\s+(.+?)\s{2,}Grade:\s+\*\s+\(-/(\d+(?:\.\d+)?)\)\s*$`)

// Anything that opens like an assignment row but fails the full match
// is reported as malformed rather than silently dropped.
var assignmentProbeRe = regexp.MustCompile(`^\s+\d{2}/\d{2}/\d{4}(\s|$)`)

var (
	scoreRe = regexp.MustCompile(`^([\d.]+)/([\d.]+)\s*=\s*([\d.]+)%$`)

	// Scores with a non-numeric earned value ("-/9") mean the grade
	// has not been entered yet.
	ungradedScoreRe = regexp.MustCompile(`^[^\d/]+/(\d+(?:\.\d+)?)$`)

	// The "**" here is a literal part of the label, not a footnote
	// reference; matching the label whole keeps the grade value from
	// being mangled by annotation stripping.
	overallGradeRe = regexp.MustCompile(`^Current overall grade\*\*:\s+(\S+)`)

	headerRes = map[string]*regexp.Regexp{
		"Student":        regexp.MustCompile(`^Student\s*:\s*(.+)$`),
		"Grading period": regexp.MustCompile(`^Grading period\s*:\s*(.+)$`),
		"Course":         regexp.MustCompile(`^Course\s*:\s*(.+)$`),
		"Period":         regexp.MustCompile(`^Period\s*:\s*(.+)$`),
		"Instructor":     regexp.MustCompile(`^Instructor\s*:\s*(.+)$`),
	}
)

// ParseReport converts one email body into a ParsedReport. Lines that
// resemble assignment rows but cannot be decomposed fail individually
// and are collected in LineErrors; the rest of the course still
// parses. A body with no usable headers and no assignments fails with
// ErrTotalParseFailure, and a missing course name with
// HeaderMissingError.
func ParseReport(body string, receivedAt time.Time) (*ParsedReport, error) {
	headers := map[string]string{}
	overallGrade := ""
	var assignments []Assignment
	var lineErrors []error

	for i, raw := range strings.Split(body, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if m := notYetGradedRe.FindStringSubmatch(line); m != nil {
			a, err := parseNotYetGradedLine(m)
			if err != nil {
				lineErrors = append(lineErrors, &MalformedLineError{LineNum: i + 1, Line: line})
				continue
			}
			assignments = append(assignments, a)
			continue
		}

		if m := assignmentRe.FindStringSubmatch(line); m != nil {
			a, err := parseAssignmentLine(m)
			if err != nil {
				lineErrors = append(lineErrors, &MalformedLineError{LineNum: i + 1, Line: line})
				continue
			}
			assignments = append(assignments, a)
			continue
		}

		if assignmentProbeRe.MatchString(line) {
			lineErrors = append(lineErrors, &MalformedLineError{LineNum: i + 1, Line: line})
			continue
		}

		if m := overallGradeRe.FindStringSubmatch(line); m != nil {
			overallGrade = strings.TrimSpace(m[1])
			continue
		}
		for field, re := range headerRes {
			if m := re.FindStringSubmatch(line); m != nil {
				headers[field] = strings.TrimSpace(m[1])
				break
			}
		}
	}

	headerCount := len(headers)
	if overallGrade != "" {
		headerCount++
	}
	if headerCount == 0 && len(assignments) == 0 {
		return nil, ErrTotalParseFailure
	}
	if headers["Course"] == "" {
		return nil, &HeaderMissingError{Field: "Course"}
	}

	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].Date < assignments[j].Date
	})

	return &ParsedReport{
		Student:       headers["Student"],
		GradingPeriod: headers["Grading period"],
		Course: Course{
			Name:         headers["Course"],
			Period:       headers["Period"],
			Instructor:   headers["Instructor"],
			OverallGrade: overallGrade,
			Assignments:  assignments,
		},
		ReceivedAt: receivedAt,
		LineErrors: lineErrors,
	}, nil
}

func parseNotYetGradedLine(m []string) (Assignment, error) {
	date, err := convertDate(m[1])
	if err != nil {
		return Assignment{}, err
	}
	possible, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Assignment{}, err
	}
	return NewAssignment(date, strings.TrimSpace(m[2]), "*", 0, possible, 0, false, false, true)
}

func parseAssignmentLine(m []string) (Assignment, error) {
	date, err := convertDate(m[1])
	if err != nil {
		return Assignment{}, err
	}

	name, grade, exempt, notIncluded := stripAnnotations(strings.TrimSpace(m[2]), m[3])

	rawScore := strings.TrimSpace(m[4])
	if sm := ungradedScoreRe.FindStringSubmatch(rawScore); sm != nil {
		possible, err := strconv.ParseFloat(sm[1], 64)
		if err != nil {
			return Assignment{}, err
		}
		// Ungraded wins over any annotation; missing stays false.
		return NewAssignment(date, name, grade, 0, possible, 0, false, false, true)
	}

	sm := scoreRe.FindStringSubmatch(rawScore)
	if sm == nil {
		return Assignment{}, &MalformedLineError{Line: rawScore}
	}
	earned, err := strconv.ParseFloat(sm[1], 64)
	if err != nil {
		return Assignment{}, err
	}
	possible, err := strconv.ParseFloat(sm[2], 64)
	if err != nil {
		return Assignment{}, err
	}
	// Percentages over 100 are extra credit and kept as-is.
	percentage, err := strconv.ParseFloat(sm[3], 64)
	if err != nil {
		return Assignment{}, err
	}

	return NewAssignment(date, name, grade, earned, possible, percentage, exempt, notIncluded, false)
}

// stripAnnotations detects the exempt (^) and not-included (*) marker
// characters attached to the assignment name or grade token and
// removes them so they do not pollute the stored strings. The first
// marker found wins; the flags never co-occur.
func stripAnnotations(name, grade string) (cleanName, cleanGrade string, exempt, notIncluded bool) {
	mark := byte(0)
	switch {
	case strings.HasPrefix(name, "^"), strings.HasSuffix(name, "^"):
		mark = '^'
	case strings.HasPrefix(name, "*"), strings.HasSuffix(name, "*"):
		mark = '*'
	case len(grade) > 1 && strings.HasSuffix(grade, "^"):
		mark = '^'
	case len(grade) > 1 && strings.HasSuffix(grade, "*"):
		mark = '*'
	}

	cleanName = strings.TrimSpace(strings.Trim(name, "^*"))
	cleanGrade = grade
	if len(grade) > 1 {
		cleanGrade = strings.TrimRight(grade, "^*")
	}
	return cleanName, cleanGrade, mark == '^', mark == '*'
}

// convertDate turns MM/DD/YYYY into ISO YYYY-MM-DD, rejecting
// impossible dates.
func convertDate(s string) (string, error) {
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}
