package game

import "fairplayServer/crypto"

// Replay is everything a third party can recompute for one nonce once the
// server seed has been revealed.
type Replay struct {
	ClientSeed    string  `json:"clientSeed"`
	ServerSeed    string  `json:"serverSeed"`
	Nonce         uint64  `json:"nonce"`
	Random        float64 `json:"random"`
	RouletteValue int     `json:"rouletteResult"`
	WheelColor    Color   `json:"wheelColor"`
	MinesCount    int     `json:"minesCount,omitempty"`
	MinePositions []int   `json:"minePositions,omitempty"`
}

// ReplayRound recomputes the outcome of every game for one nonce. Mine
// placement is included when minesCount is in range.
func ReplayRound(clientSeed, serverSeed string, nonce uint64, minesCount int) Replay {
	random := Derive(clientSeed, serverSeed, nonce)
	replay := Replay{
		ClientSeed:    clientSeed,
		ServerSeed:    serverSeed,
		Nonce:         nonce,
		Random:        random,
		RouletteValue: RouletteNumber(random),
		WheelColor:    SelectSegment(random).Color,
	}

	if minesCount >= MinMines && minesCount <= MaxMines {
		if positions, err := PlaceMines(random, minesCount); err == nil {
			replay.MinesCount = minesCount
			replay.MinePositions = positions
		}
	}
	return replay
}

// VerifyResult checks a published result against its own revealed seeds.
func VerifyResult(r *Result) bool {
	if !crypto.VerifySeed(r.ServerSeed, r.ServerSeedHash) {
		return false
	}
	replay := ReplayRound(r.ClientSeed, r.ServerSeed, r.Nonce, 0)
	if replay.Random != r.Random {
		return false
	}
	switch r.Game {
	case KindRoulette:
		return r.RouletteOutcome != nil && r.RouletteOutcome.Result == replay.RouletteValue
	case KindWheel:
		return r.WheelOutcome != nil && r.WheelOutcome.ResultColor == replay.WheelColor
	case KindMines:
		if r.MinesOutcome == nil {
			return false
		}
		positions, err := PlaceMines(r.Random, r.MinesOutcome.MinesCount)
		if err != nil || len(positions) != len(r.MinesOutcome.MinePositions) {
			return false
		}
		for i := range positions {
			if positions[i] != r.MinesOutcome.MinePositions[i] {
				return false
			}
		}
		return true
	}
	return false
}
