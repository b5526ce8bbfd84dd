package draw

import (
	"fmt"

	"Bingo2Gether/internal/model"
)

// Bias controls how strongly the income share tilts the draw. With 0.75 a weight stays
// within [0.25, 1.75], so no number ever becomes unreachable.
const Bias = 0.75

// Weight returns the selection weight of n for a player with the given income share,
// relative to the [lo, hi] range of the pool snapshot. Players covering more than half of
// the joint contribution lean toward larger numbers; the rest lean toward smaller ones.
func Weight(n, lo, hi, incomeShare int) float64 {
	if hi <= lo {
		return 1
	}
	share := incomeShare
	if share < 0 {
		share = 0
	}
	if share > 100 {
		share = 100
	}
	x := float64(n-lo) / float64(hi-lo)
	b := float64(share-50) / 50
	return 1 + Bias*b*(2*x-1)
}

// Draw picks one number from available, weighted for player. snapshot is the pool as it
// was before the current operation started and fixes the weighting range across a batch.
func Draw(available []int, player model.Player, snapshot []int, src Source) (int, error) {
	if len(available) == 0 {
		return 0, fmt.Errorf("%w: draw from empty pool", model.ErrInvalidArgument)
	}
	if len(snapshot) == 0 {
		snapshot = available
	}
	lo, hi := bounds(snapshot)

	weights := make([]float64, len(available))
	total := 0.0
	for i, n := range available {
		w := Weight(n, lo, hi, player.IncomeShare)
		total += w
		weights[i] = total
	}

	r := src.Float64() * total
	for i, cum := range weights {
		if r < cum {
			return available[i], nil
		}
	}
	return available[len(available)-1], nil
}

// Uniform picks one number from available with equal probability.
func Uniform(available []int, src Source) (int, error) {
	if len(available) == 0 {
		return 0, fmt.Errorf("%w: draw from empty pool", model.ErrInvalidArgument)
	}
	return available[src.Intn(len(available))], nil
}

// Remove returns a copy of pool without n.
func Remove(pool []int, n int) []int {
	out := make([]int, 0, len(pool))
	for _, v := range pool {
		if v != n {
			out = append(out, v)
		}
	}
	return out
}

func bounds(pool []int) (lo, hi int) {
	lo, hi = pool[0], pool[0]
	for _, n := range pool[1:] {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return lo, hi
}
