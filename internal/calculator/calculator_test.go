package calculator

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/model"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestComputeProgress(t *testing.T) {
	state := model.GameState{
		DrawnNumbers: []int{10, 20, 30},
		Settings:     model.Settings{TotalBingoGoal: d(100), InitialInvestment: d(100)},
	}
	p, err := ComputeProgress(state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.TotalSaved.Equal(d(160)) {
		t.Errorf("expected saved 160, got %s", p.TotalSaved)
	}
	if !p.TotalGoal.Equal(d(200)) {
		t.Errorf("expected goal 200, got %s", p.TotalGoal)
	}
	if p.Percent != 80 {
		t.Errorf("expected 80%%, got %.2f", p.Percent)
	}
	if !p.Remaining.Equal(d(40)) {
		t.Errorf("expected remaining 40, got %s", p.Remaining)
	}
}

func TestComputeProgress_CapsAt100(t *testing.T) {
	state := model.GameState{
		DrawnNumbers: []int{500},
		Settings:     model.Settings{TotalBingoGoal: d(100)},
	}
	p, err := ComputeProgress(state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Percent != 100 || !p.Remaining.IsZero() {
		t.Errorf("expected capped progress, got %.2f remaining %s", p.Percent, p.Remaining)
	}
}

func TestComputeProgress_InvalidGoal(t *testing.T) {
	_, err := ComputeProgress(model.GameState{})
	if !errors.Is(err, model.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestMonthlyTarget(t *testing.T) {
	tests := []struct {
		remaining, months, want int
	}{
		{24, 5, 5},
		{25, 5, 5},
		{26, 5, 6},
		{1, 12, 1},
		{0, 12, 0},
		{10, 0, 10},
	}
	for _, tt := range tests {
		if got := MonthlyTarget(tt.remaining, tt.months); got != tt.want {
			t.Errorf("MonthlyTarget(%d, %d) = %d, want %d", tt.remaining, tt.months, got, tt.want)
		}
	}
}

func TestIncomeShares(t *testing.T) {
	tests := []struct {
		i1, i2 int64
		p1, p2 int
	}{
		{0, 0, 50, 50},
		{3000, 1000, 75, 25},
		{1000, 2000, 33, 67},
		{0, 500, 0, 100},
		{5000, 5000, 50, 50},
	}
	for _, tt := range tests {
		p1, p2 := IncomeShares(d(tt.i1), d(tt.i2))
		if p1 != tt.p1 || p2 != tt.p2 {
			t.Errorf("IncomeShares(%d, %d) = %d/%d, want %d/%d", tt.i1, tt.i2, p1, p2, tt.p1, tt.p2)
		}
		if p1+p2 != 100 {
			t.Errorf("shares must sum to 100, got %d", p1+p2)
		}
	}
}

func TestFindNumbersForExtraValue(t *testing.T) {
	tests := []struct {
		name   string
		pool   []int
		amount decimal.Decimal
		want   []int
	}{
		{"exact subset", []int{10, 20, 30, 45}, d(50), []int{20, 30}},
		{"fractional amount floors", []int{10, 20, 30, 45}, decimal.RequireFromString("50.99"), []int{20, 30}},
		{"below smallest", []int{10, 20}, d(9), nil},
		{"covers whole pool", []int{3, 1, 2}, d(100), []int{1, 2, 3}},
		{"best under budget", []int{7, 11, 13}, d(22), []int{7, 13}},
		{"zero amount", []int{1, 2}, d(0), nil},
		{"empty pool", nil, d(10), nil},
		{"amount beyond int64", []int{1, 2, 3}, decimal.RequireFromString("1e30"), []int{1, 2, 3}},
		{"below one", []int{1, 2}, decimal.RequireFromString("0.99"), nil},
	}
	for _, tt := range tests {
		got := FindNumbersForExtraValue(tt.pool, tt.amount)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFindNumbersForExtraValue_Deterministic(t *testing.T) {
	pool := []int{4, 9, 15, 16, 23, 42}
	first := FindNumbersForExtraValue(pool, d(60))
	for i := 0; i < 10; i++ {
		if got := FindNumbersForExtraValue(pool, d(60)); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %v vs %v", i, got, first)
		}
	}
	var sum int
	for _, n := range first {
		sum += n
	}
	if sum != 58 {
		t.Fatalf("expected the best reachable sum 58, got %v (sum %d)", first, sum)
	}
}

func TestMaxNumberForGoal(t *testing.T) {
	tests := []struct {
		goal int64
		want int
	}{
		{0, 0},
		{1, 1},
		{3, 2},
		{4, 3},
		{5050, 100},
		{5051, 101},
	}
	for _, tt := range tests {
		if got := MaxNumberForGoal(d(tt.goal)); got != tt.want {
			t.Errorf("MaxNumberForGoal(%d) = %d, want %d", tt.goal, got, tt.want)
		}
	}
	if Triangular(100) != 5050 {
		t.Errorf("Triangular(100) = %d", Triangular(100))
	}
}
