package game

import (
	"fmt"
	"math"
)

type Color string

const (
	ColorRed   Color = "red"
	ColorBlue  Color = "blue"
	ColorGreen Color = "green"
	ColorGold  Color = "gold"
)

type Segment struct {
	Color      Color `json:"color"`
	Weight     int   `json:"weight"`
	Multiplier int   `json:"multiplier"`
}

// WheelSegments is scanned in this order; reordering changes the odds.
var WheelSegments = []Segment{
	{Color: ColorRed, Weight: 15, Multiplier: 1},
	{Color: ColorBlue, Weight: 10, Multiplier: 2},
	{Color: ColorGreen, Weight: 4, Multiplier: 5},
	{Color: ColorGold, Weight: 1, Multiplier: 10},
}

type WheelBet struct {
	BetAmount     float64 `json:"betAmount" validate:"gt=0"`
	SelectedColor Color   `json:"selectedColor" validate:"required,oneof=red blue green gold"`
}

type WheelOutcome struct {
	SelectedColor     Color `json:"selectedColor"`
	ResultColor       Color `json:"resultColor"`
	SegmentMultiplier int   `json:"segmentMultiplier"`
}

func WheelTotalWeight() int {
	total := 0
	for _, s := range WheelSegments {
		total += s.Weight
	}
	return total
}

func IsWheelColor(c Color) bool {
	for _, s := range WheelSegments {
		if s.Color == c {
			return true
		}
	}
	return false
}

// SelectSegment walks the table subtracting weights. A segment wins when the
// remaining scaled weight is <= its own weight, boundary included.
func SelectSegment(random float64) Segment {
	scaledWeight := random * float64(WheelTotalWeight())
	for _, segment := range WheelSegments {
		if scaledWeight <= float64(segment.Weight) {
			return segment
		}
		scaledWeight -= float64(segment.Weight)
	}
	return WheelSegments[len(WheelSegments)-1]
}

func ValidateWheelBet(bet WheelBet) error {
	if !(bet.BetAmount > 0) || math.IsInf(bet.BetAmount, 0) {
		return fmt.Errorf("%w: bet amount must be positive", ErrInvalidInput)
	}
	if !IsWheelColor(bet.SelectedColor) {
		return fmt.Errorf("%w: unknown wheel color %q", ErrInvalidInput, bet.SelectedColor)
	}
	return nil
}

func SpinWheel(random float64, bet WheelBet) (*WheelOutcome, Settlement, error) {
	if err := ValidateWheelBet(bet); err != nil {
		return nil, Settlement{}, err
	}

	segment := SelectSegment(random)
	settlement := Settlement{Stake: bet.BetAmount}
	if segment.Color == bet.SelectedColor {
		settlement.Payout = bet.BetAmount * float64(segment.Multiplier)
	}

	return &WheelOutcome{
		SelectedColor:     bet.SelectedColor,
		ResultColor:       segment.Color,
		SegmentMultiplier: segment.Multiplier,
	}, settlement, nil
}
