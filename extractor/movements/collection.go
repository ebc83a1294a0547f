// Package movements accumulates extracted movements in date order and exports
// them as CSV or JSON lines.
package movements

import (
	"slices"

	"github.com/isparser/isparser/extractor/common"
)

// Collection keeps every added movement sorted by date. Movements sharing a date
// keep their insertion order.
type Collection struct {
	rows []common.Movement
}

func NewCollection() *Collection {
	return &Collection{}
}

// AddBatch sorts the batch and merges it into the rows already collected.
func (c *Collection) AddBatch(batch []common.Movement) {
	if len(batch) == 0 {
		return
	}
	sorted := slices.Clone(batch)
	slices.SortStableFunc(sorted, byDate)

	merged := make([]common.Movement, 0, len(c.rows)+len(sorted))
	i, j := 0, 0
	for i < len(c.rows) && j < len(sorted) {
		if sorted[j].Date.Before(c.rows[i].Date) {
			merged = append(merged, sorted[j])
			j++
		} else {
			merged = append(merged, c.rows[i])
			i++
		}
	}
	merged = append(merged, c.rows[i:]...)
	merged = append(merged, sorted[j:]...)
	c.rows = merged
}

func byDate(a, b common.Movement) int {
	return a.Date.Compare(b.Date)
}

func (c *Collection) Len() int {
	return len(c.rows)
}

// All returns a copy of the collected movements in date order.
func (c *Collection) All() []common.Movement {
	return slices.Clone(c.rows)
}

// Split returns the income (strictly positive) and outgoing (strictly negative)
// movements. With onlyPositive the outgoing amounts are returned as absolute
// values. Zero amounts belong to neither view.
func (c *Collection) Split(onlyPositive bool) (income, outcome []common.Movement) {
	income = []common.Movement{}
	outcome = []common.Movement{}
	for _, m := range c.rows {
		m.Tags = slices.Clone(m.Tags)
		switch {
		case m.IsIncome():
			income = append(income, m)
		case m.IsOutgoing():
			if onlyPositive {
				m.Amount = m.Amount.Abs()
			}
			outcome = append(outcome, m)
		}
	}
	return income, outcome
}
