package game

import (
	"fmt"
	"math"
)

const (
	MinesGridSize = 25
	MinMines      = 1
	MaxMines      = MinesGridSize - 1

	// MinesPayoutExponent shapes the multiplier curve.
	MinesPayoutExponent = 1.1

	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31

	// The LCG has full period, so every cell shows up within one cycle.
	maxPlacementDraws = lcgModulus
)

type MinesBet struct {
	BetAmount     float64 `json:"betAmount" validate:"gt=0"`
	MinesCount    int     `json:"minesCount" validate:"min=1,max=24"`
	RevealedTiles []int   `json:"revealedTiles" validate:"unique,dive,min=0,max=24"`
}

type MinesOutcome struct {
	MinesCount    int     `json:"minesCount"`
	RevealedTiles []int   `json:"revealedTiles"`
	MinePositions []int   `json:"minePositions"`
	HitMine       bool    `json:"hitMine"`
	Multiplier    float64 `json:"multiplier"`
}

// SafeCells is the number of cells without a mine.
func SafeCells(minesCount int) int {
	return MinesGridSize - minesCount
}

// ValidateMinesBet rejects anything the payout formula cannot price,
// including a reveal of every safe cell.
func ValidateMinesBet(bet MinesBet) error {
	if !(bet.BetAmount > 0) || math.IsInf(bet.BetAmount, 0) {
		return fmt.Errorf("%w: bet amount must be positive", ErrInvalidInput)
	}
	if bet.MinesCount < MinMines || bet.MinesCount > MaxMines {
		return fmt.Errorf("%w: mines count must be %d-%d", ErrInvalidInput, MinMines, MaxMines)
	}

	seen := make(map[int]bool, len(bet.RevealedTiles))
	for _, tile := range bet.RevealedTiles {
		if tile < 0 || tile >= MinesGridSize {
			return fmt.Errorf("%w: tile %d is off the grid", ErrInvalidInput, tile)
		}
		if seen[tile] {
			return fmt.Errorf("%w: tile %d revealed twice", ErrInvalidInput, tile)
		}
		seen[tile] = true
	}

	if limit := SafeCells(bet.MinesCount) - 1; len(bet.RevealedTiles) > limit {
		return fmt.Errorf("%w: at most %d tiles can be revealed with %d mines",
			ErrInvalidInput, limit, bet.MinesCount)
	}
	return nil
}

// PlaceMines lays out minesCount distinct mines, in draw order, from the
// LCG seeded by random.
func PlaceMines(random float64, minesCount int) ([]int, error) {
	if minesCount < MinMines || minesCount > MaxMines {
		return nil, fmt.Errorf("%w: mines count must be %d-%d", ErrInvalidInput, MinMines, MaxMines)
	}

	state := uint64(math.Floor(random*lcgModulus)) % lcgModulus
	positions := make([]int, 0, minesCount)
	taken := make(map[int]bool, minesCount)

	for draws := uint64(0); len(positions) < minesCount; draws++ {
		if draws >= maxPlacementDraws {
			return nil, fmt.Errorf("%w: mine placement did not converge", ErrInternal)
		}
		state = (state*lcgMultiplier + lcgIncrement) % lcgModulus
		position := int(math.Floor(float64(state) / lcgModulus * MinesGridSize))
		if taken[position] {
			continue
		}
		taken[position] = true
		positions = append(positions, position)
	}

	return positions, nil
}

// MinesMultiplier prices revealed safe tiles out of safeCells.
func MinesMultiplier(safeCells, revealed int) float64 {
	if revealed <= 0 {
		return 0
	}
	return math.Pow(float64(safeCells)/float64(safeCells-revealed), MinesPayoutExponent)
}

// ResolveMines settles a mines round. The round is terminal, so the mine
// layout is always disclosed.
func ResolveMines(random float64, bet MinesBet) (*MinesOutcome, Settlement, error) {
	if err := ValidateMinesBet(bet); err != nil {
		return nil, Settlement{}, err
	}

	positions, err := PlaceMines(random, bet.MinesCount)
	if err != nil {
		return nil, Settlement{}, err
	}

	mines := make(map[int]bool, len(positions))
	for _, p := range positions {
		mines[p] = true
	}

	hitMine := false
	for _, tile := range bet.RevealedTiles {
		if mines[tile] {
			hitMine = true
			break
		}
	}

	outcome := &MinesOutcome{
		MinesCount:    bet.MinesCount,
		RevealedTiles: append([]int{}, bet.RevealedTiles...),
		MinePositions: positions,
		HitMine:       hitMine,
	}

	settlement := Settlement{Stake: bet.BetAmount}
	if !hitMine && len(bet.RevealedTiles) > 0 {
		outcome.Multiplier = MinesMultiplier(SafeCells(bet.MinesCount), len(bet.RevealedTiles))
		settlement.Payout = bet.BetAmount * outcome.Multiplier
	}

	return outcome, settlement, nil
}
