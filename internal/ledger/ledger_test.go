package ledger

import (
	"testing"
	"time"

	"Bingo2Gether/internal/model"
)

func tx(n int, p model.PlayerID, d model.Date, typ model.TransactionType) model.Transaction {
	return model.Transaction{ID: "t", Number: n, PlayerID: p, Date: d, Type: typ}
}

var (
	jan05 = model.Date{Year: 2024, Month: time.January, Day: 5}
	jan20 = model.Date{Year: 2024, Month: time.January, Day: 20}
	feb01 = model.Date{Year: 2024, Month: time.February, Day: 1}
)

func TestPrependAndPop(t *testing.T) {
	h := Prepend(nil, tx(1, model.P1, jan05, model.TxMonthly))
	h = Prepend(h, tx(2, model.P2, jan20, model.TxMonthly), tx(3, model.P1, jan20, model.TxMonthly))
	if len(h) != 3 || h[0].Number != 2 || h[2].Number != 1 {
		t.Fatalf("unexpected order: %+v", h)
	}

	rest, popped := Pop(h, 2)
	if len(rest) != 1 || rest[0].Number != 1 {
		t.Fatalf("unexpected rest: %+v", rest)
	}
	if len(popped) != 2 || popped[0].Number != 2 {
		t.Fatalf("unexpected popped: %+v", popped)
	}

	rest, popped = Pop(h, 10)
	if len(rest) != 0 || len(popped) != 3 {
		t.Fatalf("pop past end: rest=%d popped=%d", len(rest), len(popped))
	}
}

func TestPrepend_DoesNotAlias(t *testing.T) {
	h := []model.Transaction{tx(1, model.P1, jan05, model.TxMonthly)}
	h2 := Prepend(h, tx(2, model.P2, jan05, model.TxMonthly))
	h2[1].Number = 99
	if h[0].Number != 1 {
		t.Fatal("Prepend shares backing array with input")
	}
}

func TestOwnersAndContributions(t *testing.T) {
	h := []model.Transaction{
		tx(10, model.P2, feb01, model.TxExtra),
		tx(4, model.P1, jan20, model.TxMonthly),
		tx(7, model.P2, jan05, model.TxMonthly),
	}
	owners := Owners(h)
	if owners[10] != model.P2 || owners[4] != model.P1 || owners[7] != model.P2 {
		t.Fatalf("unexpected owners: %v", owners)
	}
	if _, ok := owners[5]; ok {
		t.Fatal("undrawn number has an owner")
	}
	c := Contributions(h)
	if c[model.P1] != 4 || c[model.P2] != 17 {
		t.Fatalf("unexpected contributions: %v", c)
	}
}

func TestMonthBatch_CalendarMonth(t *testing.T) {
	h := []model.Transaction{
		tx(9, model.P1, feb01, model.TxMonthly),
		tx(5, model.P2, jan20, model.TxMonthly),
		tx(3, model.P1, jan05, model.TxMonthly),
		tx(1, model.P1, jan05, model.TxBonus),
	}
	b, ok := MonthBatch(h, 2024, time.January)
	if !ok {
		t.Fatal("expected a January batch")
	}
	if b.Len() != 3 {
		t.Fatalf("expected 3 January entries, got %d", b.Len())
	}
	if b.P1Sum != 4 || b.P2Sum != 5 || b.Total() != 9 {
		t.Errorf("unexpected sums: %+v", b)
	}
	if b.P1Numbers[0] != 1 || b.P1Numbers[1] != 3 {
		t.Errorf("p1 numbers not sorted: %v", b.P1Numbers)
	}
	if _, ok := MonthBatch(h, 2023, time.January); ok {
		t.Error("same month of another year must not match")
	}
}

func TestLatestBatch(t *testing.T) {
	h := []model.Transaction{
		tx(50, model.P1, feb01, model.TxExtra),
		tx(8, model.P1, jan20, model.TxMonthly),
		tx(6, model.P2, jan20, model.TxMonthly),
		tx(2, model.P1, jan05, model.TxMonthly),
	}
	b, ok := LatestBatch(h)
	if !ok {
		t.Fatal("expected latest batch")
	}
	if b.Date != jan20 || b.P1Sum != 8 || b.P2Sum != 6 {
		t.Fatalf("unexpected latest batch: %+v", b)
	}
	if _, ok := LatestBatch(nil); ok {
		t.Fatal("empty history has no batch")
	}
}
