package coach

import (
	"context"

	"Bingo2Gether/internal/draw"
	"Bingo2Gether/internal/model"
)

// Categories steer generated challenges toward variety.
var Categories = []string{
	"SKILL / PRECISION",
	"TIME / ENDURANCE",
	"CONTROLLED LUCK",
	"MEMORY / ATTENTION",
	"CREATIVE",
	"HOUSEHOLD",
	"MONEY / NEGOTIATION",
}

const extraDrawOption = "Draw 1 extra number"

var staticIncentives = []model.Incentive{
	{Title: "50/30/20 Rule", PracticalTip: "Split your income: 50% needs, 30% wants and 20% straight to the bingo goal.", BingoImpact: "Organises your cash flow.", TimeImpact: "Keeps every month consistent."},
	{Title: "No-Spend Day", PracticalTip: "Pick one day a week with zero spending beyond fixed bills. Cook at home and enjoy free fun.", BingoImpact: "Saves 50-100 a week.", TimeImpact: "Brings the goal about two weeks closer."},
	{Title: "Subscription Sweep", PracticalTip: "Go through the card statement and cancel apps and streaming you did not use last month.", BingoImpact: "Recovers 30-80 every month.", TimeImpact: "Cuts months off the deadline."},
	{Title: "Declutter Sale", PracticalTip: "Each of you picks 3 items unused for six months and lists them for sale today.", BingoImpact: "Instant cash injection.", TimeImpact: "Can pay off several numbers at once."},
	{Title: "Lazy Tax", PracticalTip: "Every delivery ordered out of laziness costs an extra 10% deposited into the bingo.", BingoImpact: "Turns a bad expense into savings.", TimeImpact: "Raises the weekly contribution."},
	{Title: "Invested Coffee", PracticalTip: "Bring coffee and snacks from home. The money saved goes to the bingo the same day.", BingoImpact: "Small daily amounts add up.", TimeImpact: "Builds a daily saving habit."},
	{Title: "Yearly Renegotiation", PracticalTip: "Call your internet and phone providers and ask for a retention discount. The discount becomes a fixed monthly deposit.", BingoImpact: "Recurring savings without extra effort.", TimeImpact: "Permanent monthly gain."},
	{Title: "High-Yield Savings", PracticalTip: "Do not leave the bingo money in a checking account. Move it somewhere that pays daily interest.", BingoImpact: "Your money works while you sleep.", TimeImpact: "Protects the goal from inflation."},
	{Title: "Shopping List Only", PracticalTip: "Never go grocery shopping hungry or without a list, and buy only what is on it.", BingoImpact: "Avoids impulse buys.", TimeImpact: "Leaves more room for the bingo."},
	{Title: "Store Brands", PracticalTip: "Swap big brands for store brands on cleaning products and pantry basics.", BingoImpact: "Same product, lower price.", TimeImpact: "Immediate cost efficiency."},
}

var staticChallenges = []model.Challenge{
	{Title: "Steady Tower", Description: "Build a tower from things nearby (books, cups). The tallest one that stands for 10 seconds wins.", VictoryCriteria: "Tallest tower that does not fall.", FinancialOption: extraDrawOption, TaskOption: "Tidy up the tower mess and one more room."},
	{Title: "Coin in the Cup", Description: "Put a cup two metres away. Each of you has 5 tries to land a coin inside.", VictoryCriteria: "Most coins in the cup.", FinancialOption: extraDrawOption, TaskOption: "Give the winner a 10 minute foot massage."},
	{Title: "Sock Toss", Description: "Roll a sock into a ball and aim at a basket. Best of 5 throws.", VictoryCriteria: "Most hits.", FinancialOption: extraDrawOption, TaskOption: "Make breakfast in bed tomorrow."},
	{Title: "Blind Drawing", Description: "Blindfolded, one names an object and the other draws it. Then swap.", VictoryCriteria: "The most recognisable drawing wins.", FinancialOption: extraDrawOption, TaskOption: "Do the dishes today."},
	{Title: "Plank Duel", Description: "Hold a plank. Whoever lasts longer wins.", VictoryCriteria: "Longest plank.", FinancialOption: extraDrawOption, TaskOption: "Do 20 jumping jacks right now."},
	{Title: "Wall Sit", Description: "Backs against the wall, knees bent. First one to stand up loses.", VictoryCriteria: "Longest wall sit.", FinancialOption: extraDrawOption, TaskOption: "Bring the winner drinks whenever they ask tonight."},
	{Title: "Statue", Description: "Freeze! First to move, blink too much or laugh loses.", VictoryCriteria: "Total body control.", FinancialOption: extraDrawOption, TaskOption: "Be the winner's butler for the next hour."},
	{Title: "Heads or Tails x10", Description: "Flip a coin 10 times and call each flip.", VictoryCriteria: "Most correct calls.", FinancialOption: extraDrawOption, TaskOption: "Clean the mirrors of the house."},
	{Title: "High Card", Description: "Each draws a card from a deck. Highest card wins, aces high.", VictoryCriteria: "Highest card.", FinancialOption: extraDrawOption, TaskOption: "Organise the winner's desk."},
	{Title: "Spot the Change", Description: "One looks at the room for 30 seconds and closes their eyes. The other moves one object.", VictoryCriteria: "Fastest to spot the change.", FinancialOption: extraDrawOption, TaskOption: "Make the bed perfectly tomorrow."},
	{Title: "Lightning List", Description: "Pick a theme like fruits or car brands. Sixty seconds to write as many valid items as possible.", VictoryCriteria: "Most unique items.", FinancialOption: extraDrawOption, TaskOption: "Write the couple's pending to-do list."},
	{Title: "Story Chain", Description: "Build a story one word each. Whoever hesitates more than 3 seconds loses.", VictoryCriteria: "Flow and creativity.", FinancialOption: extraDrawOption, TaskOption: "Hide a love note for the other to find."},
	{Title: "Perfect Bed", Description: "Timed: who makes their side of the bed neatest and fastest?", VictoryCriteria: "Looks and speed.", FinancialOption: extraDrawOption, TaskOption: "Change the sheets next time."},
	{Title: "Price Guess", Description: "Pick five items from your last grocery receipt and guess each price.", VictoryCriteria: "Closest total guess.", FinancialOption: extraDrawOption, TaskOption: "Plan next week's grocery list."},
}

// StaticProvider serves the built-in pools. It never fails.
type StaticProvider struct {
	src draw.Source
}

// NewStaticProvider picks entries with src.
func NewStaticProvider(src draw.Source) *StaticProvider {
	return &StaticProvider{src: src}
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) Incentive(_ context.Context, _ Context, recent []string) (model.Incentive, error) {
	pool := exclude(staticIncentives, recent, func(i model.Incentive) string { return i.Title })
	return pool[p.src.Intn(len(pool))], nil
}

func (p *StaticProvider) Challenge(_ context.Context, _ Context, recent []string) (model.Challenge, error) {
	pool := exclude(staticChallenges, recent, func(c model.Challenge) string { return c.Title })
	return pool[p.src.Intn(len(pool))], nil
}

// exclude drops items whose title is in recent. An exhausted pool starts over.
func exclude[T any](all []T, recent []string, title func(T) string) []T {
	seen := make(map[string]bool, len(recent))
	for _, r := range recent {
		seen[r] = true
	}
	var out []T
	for _, item := range all {
		if !seen[title(item)] {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return all
	}
	return out
}
