package game

import (
	"fmt"
	"math"
)

const (
	RouletteSlots     = 37 // 0..36, single zero
	RouletteMaxNumber = RouletteSlots - 1

	StraightUpPayout = 36
	EvenMoneyPayout  = 2
	DozenPayout      = 3
)

// Bet types. Anything else is accepted but never wins.
const (
	BetNumber = "number"
	BetRed    = "red"
	BetBlack  = "black"
	BetEven   = "even"
	BetOdd    = "odd"
	BetLow    = "low"  // 1-18
	BetHigh   = "high" // 19-36
	BetDozen  = "dozen"
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

type RouletteBet struct {
	Type   string  `json:"type" validate:"required"`
	Value  *int    `json:"value,omitempty"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

type RouletteBetResult struct {
	RouletteBet
	Won    bool    `json:"won"`
	Payout float64 `json:"payout"`
}

type RouletteOutcome struct {
	Result     int                 `json:"result"`
	Color      string              `json:"color"`
	Bets       []RouletteBet       `json:"bets"`
	BetResults []RouletteBetResult `json:"betResults"`
}

// IsRed reports the European colour of n. Zero is neither red nor black.
func IsRed(n int) bool {
	return redNumbers[n]
}

func IsBlack(n int) bool {
	return n >= 1 && n <= RouletteMaxNumber && !redNumbers[n]
}

func NumberColor(n int) string {
	switch {
	case IsRed(n):
		return BetRed
	case IsBlack(n):
		return BetBlack
	default:
		return "green"
	}
}

// RouletteNumber maps a derived random value onto the wheel.
func RouletteNumber(random float64) int {
	n := int(math.Floor(random * RouletteSlots))
	if n > RouletteMaxNumber {
		n = RouletteMaxNumber
	}
	if n < 0 {
		n = 0
	}
	return n
}

// ValidateRouletteBets checks the shape of a bet slip. Unknown types pass.
func ValidateRouletteBets(bets []RouletteBet) error {
	if len(bets) == 0 {
		return fmt.Errorf("%w: at least one bet is required", ErrInvalidInput)
	}
	for i, bet := range bets {
		if bet.Type == "" {
			return fmt.Errorf("%w: bet %d has no type", ErrInvalidInput, i)
		}
		if !(bet.Amount > 0) || math.IsInf(bet.Amount, 0) {
			return fmt.Errorf("%w: bet %d amount must be positive", ErrInvalidInput, i)
		}
		switch bet.Type {
		case BetNumber:
			if bet.Value == nil {
				return fmt.Errorf("%w: bet %d needs a number value", ErrInvalidInput, i)
			}
			if *bet.Value < 0 || *bet.Value > RouletteMaxNumber {
				return fmt.Errorf("%w: bet %d number must be 0-%d", ErrInvalidInput, i, RouletteMaxNumber)
			}
		case BetDozen:
			if bet.Value == nil {
				return fmt.Errorf("%w: bet %d needs a dozen value", ErrInvalidInput, i)
			}
			if *bet.Value < 1 || *bet.Value > 3 {
				return fmt.Errorf("%w: bet %d dozen must be 1-3", ErrInvalidInput, i)
			}
		}
	}
	return nil
}

// RouletteStake sums the amounts on a bet slip.
func RouletteStake(bets []RouletteBet) float64 {
	var total float64
	for _, bet := range bets {
		total += bet.Amount
	}
	return total
}

// SpinRoulette resolves a validated bet slip against random.
func SpinRoulette(random float64, bets []RouletteBet) (*RouletteOutcome, Settlement) {
	result := RouletteNumber(random)

	outcome := &RouletteOutcome{
		Result:     result,
		Color:      NumberColor(result),
		Bets:       append([]RouletteBet(nil), bets...),
		BetResults: make([]RouletteBetResult, 0, len(bets)),
	}

	var settlement Settlement
	for _, bet := range bets {
		multiplier := rouletteMultiplier(bet, result)
		payout := bet.Amount * float64(multiplier)

		settlement.Stake += bet.Amount
		settlement.Payout += payout

		outcome.BetResults = append(outcome.BetResults, RouletteBetResult{
			RouletteBet: bet,
			Won:         multiplier > 0,
			Payout:      payout,
		})
	}

	return outcome, settlement
}

// rouletteMultiplier returns the gross payout multiple of bet on result, or 0.
// Number and dozen bets without a value never win.
func rouletteMultiplier(bet RouletteBet, result int) int {
	switch bet.Type {
	case BetNumber:
		if bet.Value != nil && *bet.Value == result {
			return StraightUpPayout
		}
	case BetRed:
		if IsRed(result) {
			return EvenMoneyPayout
		}
	case BetBlack:
		if IsBlack(result) {
			return EvenMoneyPayout
		}
	case BetEven:
		if result != 0 && result%2 == 0 {
			return EvenMoneyPayout
		}
	case BetOdd:
		if result%2 == 1 {
			return EvenMoneyPayout
		}
	case BetLow:
		if result >= 1 && result <= 18 {
			return EvenMoneyPayout
		}
	case BetHigh:
		if result >= 19 {
			return EvenMoneyPayout
		}
	case BetDozen:
		if bet.Value != nil && result != 0 && (result-1)/12+1 == *bet.Value {
			return DozenPayout
		}
	}
	return 0
}
