package cards

import "Bingo2Gether/internal/model"

// DefaultSize is the standard 5x5 card.
const DefaultSize = 25

// Set is a set of drawn numbers.
type Set map[int]struct{}

// NewSet builds a Set from numbers.
func NewSet(numbers []int) Set {
	s := make(Set, len(numbers))
	for _, n := range numbers {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether n is in the set.
func (s Set) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Count returns how many cards [1, maxNumber] splits into.
func Count(maxNumber, size int) int {
	if maxNumber <= 0 {
		return 0
	}
	size = normalise(size)
	return (maxNumber + size - 1) / size
}

// Bounds returns the first and last number of card id (1-based).
func Bounds(id, maxNumber, size int) (first, last int) {
	size = normalise(size)
	first = (id-1)*size + 1
	last = first + size - 1
	if last > maxNumber {
		last = maxNumber
	}
	return first, last
}

// Completed lists the ids of cards whose every number is in drawn.
func Completed(drawn Set, maxNumber, size int) []int {
	var ids []int
	for id := 1; id <= Count(maxNumber, size); id++ {
		first, last := Bounds(id, maxNumber, size)
		complete := true
		for n := first; n <= last; n++ {
			if !drawn.Has(n) {
				complete = false
				break
			}
		}
		if complete {
			ids = append(ids, id)
		}
	}
	return ids
}

// CountCompleted returns the number of completed cards.
func CountCompleted(drawn Set, maxNumber, size int) int {
	return len(Completed(drawn, maxNumber, size))
}

// NewlyCompleted returns the cards complete in after but not in before.
func NewlyCompleted(before, after Set, maxNumber, size int) []int {
	was := map[int]bool{}
	for _, id := range Completed(before, maxNumber, size) {
		was[id] = true
	}
	var out []int
	for _, id := range Completed(after, maxNumber, size) {
		if !was[id] {
			out = append(out, id)
		}
	}
	return out
}

// Build lays out every card, marking completion through the ledger's owner map.
func Build(maxNumber, size int, owners map[int]model.PlayerID) []model.BingoCard {
	out := make([]model.BingoCard, 0, Count(maxNumber, size))
	for id := 1; id <= Count(maxNumber, size); id++ {
		first, last := Bounds(id, maxNumber, size)
		card := model.BingoCard{ID: id, IsComplete: true}
		for n := first; n <= last; n++ {
			card.Numbers = append(card.Numbers, n)
			if _, ok := owners[n]; !ok {
				card.IsComplete = false
			}
		}
		out = append(out, card)
	}
	return out
}

func normalise(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	return size
}
