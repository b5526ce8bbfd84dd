package cards

// Rewards are the treats offered when a card is completed.
var Rewards = []string{
	"Romantic dinner! 🍝🍷",
	"Massage voucher! 💆",
	"Movie night with pizza! 🍕🎬",
	"Breakfast in bed! 🥞☕",
	"Special request voucher! 🎫✨",
	"Picnic in the park! 🥪🌳",
	"Wine and cheese night! 🍷🧀",
}

// Reward picks a reward with the given index source (an Intn function).
func Reward(intn func(int) int) string {
	return Rewards[intn(len(Rewards))]
}
