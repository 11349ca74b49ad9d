package core

import "sort"

// Diff compares a fresh report against the previously persisted alert
// state and returns the events to deliver plus the state to persist.
//
// The new state is exactly the set of currently missing identities,
// so entries for assignments that are no longer missing drop out, and
// running Diff again with the state it just produced yields no
// events. The engine is pure: no clock reads, no I/O, and identity
// strings from the previous state are treated as opaque except for
// best-effort course grouping in resolved events.
func Diff(report *GradeReport, prev AlertState) ([]Event, AlertState) {
	// Duplicate identities (the same assignment listed twice in one
	// course) collapse to one set member before any counting.
	var currentMissing []string
	currentSet := map[string]struct{}{}
	for _, k := range report.MissingKeys() {
		if _, ok := currentSet[k]; ok {
			continue
		}
		currentSet[k] = struct{}{}
		currentMissing = append(currentMissing, k)
	}
	prevSet := make(map[string]struct{}, len(prev.AlertedMissing))
	for _, k := range prev.AlertedMissing {
		prevSet[k] = struct{}{}
	}

	newlySet := map[string]struct{}{}
	stillOutstanding := 0
	for _, k := range currentMissing {
		if _, ok := prevSet[k]; ok {
			stillOutstanding++
		} else {
			newlySet[k] = struct{}{}
		}
	}

	var resolved []string
	for _, k := range prev.AlertedMissing {
		if _, ok := currentSet[k]; !ok {
			resolved = append(resolved, k)
		}
	}

	var events []Event
	if len(newlySet) > 0 {
		events = append(events, MissingAlert{
			Student:          report.Student,
			Courses:          groupByReportOrder(report, newlySet),
			StillOutstanding: stillOutstanding,
		})
	}
	if len(resolved) > 0 {
		events = append(events, ResolvedAlert{
			Student: report.Student,
			Courses: groupByKeyOrder(resolved),
		})
	}

	sorted := make([]string, len(currentMissing))
	copy(sorted, currentMissing)
	sort.Strings(sorted)

	lastRun := report.LastUpdated
	return events, AlertState{
		AlertedMissing: sorted,
		LastRun:        &lastRun,
	}
}

// groupByReportOrder groups the selected identities by course,
// walking the report so courses and assignments keep their snapshot
// order. Each identity is consumed on first sight, so a duplicated
// report row yields one alert item.
func groupByReportOrder(report *GradeReport, selected map[string]struct{}) []CourseAlerts {
	var groups []CourseAlerts
	for _, c := range report.Courses {
		var items []AlertItem
		for _, a := range c.Assignments {
			key := AssignmentKey(c.Name, a.Name, a.Date)
			if _, ok := selected[key]; ok {
				delete(selected, key)
				items = append(items, AlertItem{Name: a.Name, Date: a.Date, Key: key})
			}
		}
		if len(items) > 0 {
			groups = append(groups, CourseAlerts{Course: c.Name, Assignments: items})
		}
	}
	return groups
}

// groupByKeyOrder groups identities by the course embedded in the
// key. Resolved assignments may reference courses absent from the new
// report, so the keys themselves are the only source of grouping; a
// key that does not split stays whole under an empty course name.
func groupByKeyOrder(keys []string) []CourseAlerts {
	var groups []CourseAlerts
	index := map[string]int{}
	for _, key := range keys {
		course, name, date, ok := SplitAssignmentKey(key)
		if !ok {
			course, name, date = "", key, ""
		}
		item := AlertItem{Name: name, Date: date, Key: key}
		if i, ok := index[course]; ok {
			groups[i].Assignments = append(groups[i].Assignments, item)
			continue
		}
		index[course] = len(groups)
		groups = append(groups, CourseAlerts{Course: course, Assignments: []AlertItem{item}})
	}
	return groups
}
