package game

import (
	"testing"

	"fairplayServer/crypto"
)

func TestReplayRound(t *testing.T) {
	replay := ReplayRound("abc", "def", 0, 3)
	if replay.RouletteValue != 8 {
		t.Errorf("roulette = %d, want 8", replay.RouletteValue)
	}
	if replay.WheelColor != ColorRed {
		t.Errorf("wheel = %s, want red", replay.WheelColor)
	}
	if len(replay.MinePositions) != 3 || replay.MinePositions[0] != 23 {
		t.Errorf("mines = %v, want [23 22 5]", replay.MinePositions)
	}

	if r := ReplayRound("abc", "def", 0, 0); r.MinePositions != nil {
		t.Errorf("mines should be skipped for count 0, got %v", r.MinePositions)
	}
}

func TestVerifyResult(t *testing.T) {
	const serverSeed = "def"
	random := Derive("abc", serverSeed, 13)
	outcome, s, err := SpinWheel(random, WheelBet{BetAmount: 5, SelectedColor: ColorGold})
	if err != nil {
		t.Fatal(err)
	}

	result := &Result{
		Game:           KindWheel,
		WheelOutcome:   outcome,
		TotalBet:       s.Stake,
		TotalWinnings:  s.Payout,
		Nonce:          13,
		Random:         random,
		ClientSeed:     "abc",
		ServerSeed:     serverSeed,
		ServerSeedHash: crypto.HashSeed(serverSeed),
	}
	if !VerifyResult(result) {
		t.Fatal("honest result failed verification")
	}

	tampered := *result
	tampered.WheelOutcome = &WheelOutcome{SelectedColor: ColorGold, ResultColor: ColorRed, SegmentMultiplier: 1}
	if VerifyResult(&tampered) {
		t.Error("tampered outcome passed verification")
	}

	wrongHash := *result
	wrongHash.ServerSeedHash = crypto.HashSeed("other")
	if VerifyResult(&wrongHash) {
		t.Error("mismatched commitment passed verification")
	}
}

func TestVerifyMinesResult(t *testing.T) {
	random := Derive("abc", "def", 5)
	outcome, _, err := ResolveMines(random, MinesBet{BetAmount: 1, MinesCount: 3, RevealedTiles: []int{1}})
	if err != nil {
		t.Fatal(err)
	}
	result := &Result{
		Game:           KindMines,
		MinesOutcome:   outcome,
		Nonce:          5,
		Random:         random,
		ClientSeed:     "abc",
		ServerSeed:     "def",
		ServerSeedHash: crypto.HashSeed("def"),
	}
	if !VerifyResult(result) {
		t.Fatal("honest mines result failed verification")
	}
	outcome.MinePositions[0], outcome.MinePositions[1] = outcome.MinePositions[1], outcome.MinePositions[0]
	if VerifyResult(result) {
		t.Error("reordered mine layout passed verification")
	}
}
