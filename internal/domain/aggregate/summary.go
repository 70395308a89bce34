package aggregate

import (
	"math"
	"sort"
	"strconv"

	"github.com/okian/flagmap/internal/domain/model"
)

// SpotFoul marks categories whose yardage varies too much to have a
// typical value.
const SpotFoul = "spot"

// spotThreshold is the yardage standard deviation above which a category is
// treated as a spot foul.
const spotThreshold = 10.0

// CategorySummary describes one penalty category across the whole input.
type CategorySummary struct {
	Category    string `json:"category"`
	Occurrences int    `json:"num_occ"`
	// Yards is the most common enforced yardage, or SpotFoul.
	Yards string `json:"yards"`
}

// Summarize counts every penalty per category and derives the typical
// yardage from the accepted ones; declined and offsetting flags do not
// contribute to the yardage. Categories with no accepted flag are omitted.
// Output is ordered by category.
func Summarize(events []model.Penalty) []CategorySummary {
	occ := make(map[string]int)
	yards := make(map[string][]int)
	for i := range events {
		p := &events[i]
		occ[p.Category]++
		if p.Declined || p.Offsetting {
			continue
		}
		yards[p.Category] = append(yards[p.Category], p.Yards)
	}

	out := make([]CategorySummary, 0, len(yards))
	for cat, ys := range yards {
		typical := SpotFoul
		if stddev(ys) <= spotThreshold {
			typical = strconv.Itoa(mode(ys))
		}
		out = append(out, CategorySummary{Category: cat, Occurrences: occ[cat], Yards: typical})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// stddev is the sample standard deviation; fewer than two values give 0.
func stddev(xs []int) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := float64(x) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

// mode returns the most frequent value, the smallest one on ties.
func mode(xs []int) int {
	freq := make(map[int]int, len(xs))
	for _, x := range xs {
		freq[x]++
	}
	best, bestN := 0, -1
	for v, n := range freq {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best
}
