package model

import "github.com/shopspring/decimal"

// PlayerID identifies one of the two partners.
type PlayerID string

const (
	P1 PlayerID = "p1"
	P2 PlayerID = "p2"
)

// Other returns the partner of id.
func (id PlayerID) Other() PlayerID {
	if id == P1 {
		return P2
	}
	return P1
}

// Valid reports whether id is p1 or p2.
func (id PlayerID) Valid() bool { return id == P1 || id == P2 }

// Player is one partner of the couple.
type Player struct {
	Name             string          `json:"name"`
	Avatar           string          `json:"avatar,omitempty"`
	EstimatedIncome  decimal.Decimal `json:"estimated_income"`
	IncomeShare      int             `json:"income_share"` // percent of the joint contribution, p1+p2 == 100
	TotalContributed int64           `json:"total_contributed"`
}

// Players holds exactly two partners.
type Players struct {
	P1 Player `json:"p1"`
	P2 Player `json:"p2"`
}

// Get returns the player for id.
func (p Players) Get(id PlayerID) Player {
	if id == P2 {
		return p.P2
	}
	return p.P1
}

// With returns a copy of p with id replaced by pl.
func (p Players) With(id PlayerID, pl Player) Players {
	if id == P2 {
		p.P2 = pl
	} else {
		p.P1 = pl
	}
	return p
}
