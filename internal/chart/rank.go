package chart

import "sort"

// DefaultTopN is the number of ranked items shown on the disease chart.
const DefaultTopN = 5

// SelectTopN returns at most n items sorted by probability descending.
// Ties are broken by label ascending so output is reproducible. Fewer than
// n items are returned as-is (sorted, no padding); n <= 0 yields nothing.
// The set is never mutated and nothing is cached between calls.
func SelectTopN(set ProbabilitySet, n int) []RankedItem {
	if n <= 0 || set.Len() == 0 {
		return []RankedItem{}
	}
	items := set.Items()
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Probability == items[j].Probability {
			return items[i].Label < items[j].Label
		}
		return items[i].Probability > items[j].Probability
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
