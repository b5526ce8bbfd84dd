package model

// Incentive is a savings tip produced by the coach.
type Incentive struct {
	Title        string `json:"title"`
	PracticalTip string `json:"practicalTip"`
	BingoImpact  string `json:"bingoImpact"`
	TimeImpact   string `json:"timeImpact"`
}

// Challenge is a small competition between partners. The loser either pays with a draw
// (FinancialOption) or performs a task (TaskOption).
type Challenge struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	VictoryCriteria string `json:"victoryCriteria"`
	FinancialOption string `json:"financialOption"`
	TaskOption      string `json:"taskOption"`
}

// ChallengeOption is the loser's choice when a challenge ends.
type ChallengeOption string

const (
	OptionFinancial ChallengeOption = "financial"
	OptionTask      ChallengeOption = "task"
)
