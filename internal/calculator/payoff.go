package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// FindNumbersForExtraValue selects the subset of pool with the largest sum not above amount.
// The search is an exact 0/1 knapsack over integer sums, so the result is deterministic:
// candidates are scanned ascending and each sum keeps the first item that reached it.
// The result is sorted ascending and empty when no number fits.
func FindNumbersForExtraValue(pool []int, amount decimal.Decimal) []int {
	if len(pool) == 0 || amount.LessThan(decimal.NewFromInt(1)) {
		return nil
	}

	items := append([]int(nil), pool...)
	sort.Ints(items)

	var total int64
	for _, n := range items {
		total += int64(n)
	}
	// Compared as decimals: amounts beyond int64 must not wrap.
	if amount.GreaterThanOrEqual(decimal.NewFromInt(total)) {
		return items
	}
	budget := amount.Floor().IntPart()
	if int64(items[0]) > budget {
		return nil
	}

	v := int(budget)
	// reach[s] is the index of the item that first made s reachable, -1 when unreachable.
	reach := make([]int32, v+1)
	for i := range reach {
		reach[i] = -1
	}
	reach[0] = int32(len(items))

	for i, n := range items {
		if n <= 0 || n > v {
			continue
		}
		for s := v; s >= n; s-- {
			if reach[s] == -1 && reach[s-n] != -1 {
				reach[s] = int32(i)
			}
		}
	}

	best := v
	for best > 0 && reach[best] == -1 {
		best--
	}

	var out []int
	for s := best; s > 0; {
		n := items[reach[s]]
		out = append(out, n)
		s -= n
	}
	sort.Ints(out)
	return out
}
