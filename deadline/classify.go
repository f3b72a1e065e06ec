package deadline

import (
	"bytes"
	"slices"
	"sort"
	"time"
)

type Category string

const (
	Upcoming  Category = "upcoming"
	Missed    Category = "missed"
	Pending   Category = "pending"
	Invalid   Category = "invalid"
	Completed Category = "completed"
	Late      Category = "late"
)

// AllCategories in display order.
var AllCategories = []Category{Upcoming, Pending, Late, Missed, Invalid, Completed}

func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// CategorySet is a small bit set of categories. The zero value is empty.
type CategorySet uint8

func categoryBit(c Category) CategorySet {
	for i, cc := range AllCategories {
		if cc == c {
			return 1 << i
		}
	}
	return 0
}

func (s CategorySet) Has(c Category) bool {
	bit := categoryBit(c)
	return bit != 0 && s&bit != 0
}

func (s CategorySet) With(c Category) CategorySet {
	return s | categoryBit(c)
}

func (s CategorySet) Empty() bool {
	return s == 0
}

// Slice lists the members in display order.
func (s CategorySet) Slice() []Category {
	res := make([]Category, 0, len(AllCategories))
	for _, c := range AllCategories {
		if s.Has(c) {
			res = append(res, c)
		}
	}
	return res
}

func (s CategorySet) String() string {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range s.Slice() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(c))
	}
	b.WriteByte('}')
	return b.String()
}

// Classify assigns d to every category whose predicate holds at now.
// The relevant submission is always the one referenced by LastSubmID.
func Classify(d Deadline, now time.Time) CategorySet {
	var set CategorySet

	due := d.Due
	has := d.HasSubmission()
	last := d.LastSubm()

	if due.After(now) && !d.Completed {
		if !has || (last != nil && last.Status == SubmInvalid) {
			set = set.With(Upcoming)
		}
	}

	if due.Before(now) && !has {
		set = set.With(Missed)
	}

	if last != nil {
		onTime := !last.SubmittedAt.After(due)

		if last.Status == SubmPending && onTime {
			set = set.With(Pending)
		}
		if last.Status == SubmInvalid {
			set = set.With(Invalid)
		}
		if (d.Completed || last.Status == SubmApproved) && onTime {
			set = set.With(Completed)
		}
		if !onTime {
			set = set.With(Late)
		}
	} else if has && d.Completed {
		// submissions not loaded, nothing known about timing
		set = set.With(Completed)
	}

	return set
}

// Filter keeps the deadlines that belong to c at now, preserving order.
func Filter(ds []Deadline, now time.Time, c Category) []Deadline {
	res := make([]Deadline, 0, len(ds))
	for _, d := range ds {
		if Classify(d, now).Has(c) {
			res = append(res, d)
		}
	}
	return res
}

// Count returns how many deadlines fall in each category. A deadline in
// several categories is counted in each of them.
func Count(ds []Deadline, now time.Time) map[Category]int {
	res := make(map[Category]int, len(AllCategories))
	for _, c := range AllCategories {
		res[c] = 0
	}
	for _, d := range ds {
		for _, c := range Classify(d, now).Slice() {
			res[c]++
		}
	}
	return res
}

type DisplayMode int

const (
	// DisplayUpcoming sorts soonest first.
	DisplayUpcoming DisplayMode = iota
	// DisplayHistory sorts most recent first.
	DisplayHistory
)

// SortForDisplay returns a sorted copy of ds. Equal due dates are ordered
// by id so that the result is deterministic.
func SortForDisplay(ds []Deadline, mode DisplayMode) []Deadline {
	res := slices.Clone(ds)
	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i], res[j]
		if !a.Due.Equal(b.Due) {
			if mode == DisplayHistory {
				return a.Due.After(b.Due)
			}
			return a.Due.Before(b.Due)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return res
}
