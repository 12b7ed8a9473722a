package entities

import "fmt"

// Tally holds the aggregate counts of a poll. PerOption keys are exactly the
// poll's option indices and Total is always their sum.
type Tally struct {
	Total     int64         `json:"total_votes"`
	PerOption map[int]int64 `json:"per_option_votes"`
}

func NewTally(optionCount int) Tally {
	perOption := make(map[int]int64, optionCount)
	for i := 0; i < optionCount; i++ {
		perOption[i] = 0
	}
	return Tally{PerOption: perOption}
}

// TallyFromCounts builds a tally from the per-option counters stored in
// option order alongside the total.
func TallyFromCounts(total int64, counts []int64) (Tally, error) {
	tally := Tally{Total: total, PerOption: make(map[int]int64, len(counts))}
	for i, count := range counts {
		if count < 0 {
			return Tally{}, fmt.Errorf("negative count %d for option %d", count, i)
		}
		tally.PerOption[i] = count
	}
	if !tally.Consistent() {
		return Tally{}, fmt.Errorf("inconsistent tally: total %d, options sum %d", total, tally.Sum())
	}
	return tally, nil
}

// Apply counts one vote for option. It returns an updated copy.
func (t Tally) Apply(option int) (Tally, error) {
	if _, ok := t.PerOption[option]; !ok {
		return t, fmt.Errorf("option %d is not part of this tally", option)
	}

	next := Tally{Total: t.Total + 1, PerOption: make(map[int]int64, len(t.PerOption))}
	for k, v := range t.PerOption {
		next.PerOption[k] = v
	}
	next.PerOption[option]++
	return next, nil
}

func (t Tally) Sum() int64 {
	var sum int64
	for _, v := range t.PerOption {
		sum += v
	}
	return sum
}

func (t Tally) Consistent() bool {
	return t.Total >= 0 && t.Total == t.Sum()
}

// Counts returns the per-option counters in option order.
func (t Tally) Counts() []int64 {
	counts := make([]int64, len(t.PerOption))
	for k, v := range t.PerOption {
		if k >= 0 && k < len(counts) {
			counts[k] = v
		}
	}
	return counts
}
