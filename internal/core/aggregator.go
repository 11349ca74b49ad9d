package core

import "time"

// Aggregate folds parsed reports, in arrival order, into a single
// GradeReport. Each course name keeps only the last-arriving report
// for it; there is no merging of partial data across emails. The
// report's LastUpdated is the latest arrival timestamp among the
// inputs; fallback applies only when no input carries one.
func Aggregate(reports []*ParsedReport, fallback time.Time) *GradeReport {
	out := &GradeReport{}
	index := map[string]int{}

	for _, p := range reports {
		if p == nil {
			continue
		}
		if p.Student != "" {
			out.Student = p.Student
		}
		if p.GradingPeriod != "" {
			out.GradingPeriod = p.GradingPeriod
		}
		if p.ReceivedAt.After(out.LastUpdated) {
			out.LastUpdated = p.ReceivedAt
		}

		if i, ok := index[p.Course.Name]; ok {
			out.Courses[i] = p.Course
			continue
		}
		index[p.Course.Name] = len(out.Courses)
		out.Courses = append(out.Courses, p.Course)
	}

	if out.LastUpdated.IsZero() {
		out.LastUpdated = fallback
	}
	return out
}
