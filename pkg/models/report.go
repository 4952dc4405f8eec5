package models

// TrackStatuses returns the count of tasks in each status.
func TrackStatuses(tasks []Task) map[TaskStatus]int {
	counts := make(map[TaskStatus]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// MakespanBoundaries returns the best-case and worst-case total completion
// time for a set of tasks: all in parallel (the single largest cost) and
// all in sequence (the sum). Tasks without a cost contribute zero.
func MakespanBoundaries(tasks []Task) (min int64, max int64) {
	for _, t := range tasks {
		if t.Cost == nil {
			continue
		}
		max += t.Cost.Amount
		if t.Cost.Amount > min {
			min = t.Cost.Amount
		}
	}
	return min, max
}
