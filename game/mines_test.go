package game

import (
	"errors"
	"math"
	"testing"
)

func TestPlaceMinesReference(t *testing.T) {
	tests := []struct {
		nonce uint64
		want  []int
	}{
		{0, []int{23, 22, 5}},
		{1, []int{18, 23, 16}},
		{5, []int{0, 14, 23}},
		{13, []int{23, 1, 11}},
	}
	for _, tt := range tests {
		got, err := PlaceMines(Derive("abc", "def", tt.nonce), 3)
		if err != nil {
			t.Fatalf("nonce %d: %v", tt.nonce, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("nonce %d: got %v, want %v", tt.nonce, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("nonce %d: got %v, want %v", tt.nonce, got, tt.want)
				break
			}
		}
	}
}

func TestPlaceMinesUnique(t *testing.T) {
	for count := MinMines; count <= MaxMines; count++ {
		for nonce := uint64(0); nonce < 50; nonce++ {
			positions, err := PlaceMines(Derive("unique", "mines", nonce), count)
			if err != nil {
				t.Fatalf("count %d nonce %d: %v", count, nonce, err)
			}
			if len(positions) != count {
				t.Fatalf("count %d nonce %d: got %d positions", count, nonce, len(positions))
			}
			seen := make(map[int]bool)
			for _, p := range positions {
				if p < 0 || p >= MinesGridSize {
					t.Fatalf("position %d off the grid", p)
				}
				if seen[p] {
					t.Fatalf("count %d nonce %d: duplicate position %d in %v", count, nonce, p, positions)
				}
				seen[p] = true
			}
		}
	}
}

func TestPlaceMinesEdgeRandom(t *testing.T) {
	for _, r := range []float64{0, 1} {
		positions, err := PlaceMines(r, MaxMines)
		if err != nil {
			t.Fatalf("random %v: %v", r, err)
		}
		if len(positions) != MaxMines {
			t.Errorf("random %v: got %d positions", r, len(positions))
		}
	}
}

func TestPlacementDrawCapCoversGrid(t *testing.T) {
	for _, start := range []uint64{0, 1, lcgModulus / 2, lcgModulus - 1} {
		state := start
		seen := make(map[int]bool, MinesGridSize)
		var draws uint64
		for len(seen) < MinesGridSize {
			if draws >= maxPlacementDraws {
				t.Fatalf("start %d: grid not covered within %d draws", start, uint64(maxPlacementDraws))
			}
			state = (state*lcgMultiplier + lcgIncrement) % lcgModulus
			seen[int(float64(state)/lcgModulus*MinesGridSize)] = true
			draws++
		}
	}
}

func TestValidateMinesBet(t *testing.T) {
	tests := []struct {
		name    string
		bet     MinesBet
		wantErr bool
	}{
		{name: "no mines", bet: MinesBet{BetAmount: 1, MinesCount: 0}, wantErr: true},
		{name: "too many mines", bet: MinesBet{BetAmount: 1, MinesCount: 25}, wantErr: true},
		{name: "zero bet", bet: MinesBet{MinesCount: 3}, wantErr: true},
		{name: "tile off grid", bet: MinesBet{BetAmount: 1, MinesCount: 3, RevealedTiles: []int{25}}, wantErr: true},
		{name: "negative tile", bet: MinesBet{BetAmount: 1, MinesCount: 3, RevealedTiles: []int{-1}}, wantErr: true},
		{name: "duplicate tile", bet: MinesBet{BetAmount: 1, MinesCount: 3, RevealedTiles: []int{4, 4}}, wantErr: true},
		{name: "full clearance", bet: MinesBet{BetAmount: 1, MinesCount: 24, RevealedTiles: []int{0}}, wantErr: true},
		{name: "one below clearance", bet: MinesBet{BetAmount: 1, MinesCount: 23, RevealedTiles: []int{0}}},
		{name: "nothing revealed", bet: MinesBet{BetAmount: 1, MinesCount: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMinesBet(tt.bet)
			if tt.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveMines(t *testing.T) {
	// nonce 0 with 3 mines places mines on 23, 22 and 5.
	random := Derive("abc", "def", 0)

	t.Run("nothing revealed pays zero", func(t *testing.T) {
		outcome, s, err := ResolveMines(random, MinesBet{BetAmount: 10, MinesCount: 3})
		if err != nil {
			t.Fatal(err)
		}
		if s.Payout != 0 || s.Stake != 10 {
			t.Errorf("expected stake 10 payout 0, got %+v", s)
		}
		if outcome.HitMine {
			t.Error("no tile revealed but hitMine set")
		}
		if len(outcome.MinePositions) != 3 {
			t.Errorf("mine layout not disclosed: %v", outcome.MinePositions)
		}
	})

	t.Run("hit mine", func(t *testing.T) {
		outcome, s, err := ResolveMines(random, MinesBet{BetAmount: 10, MinesCount: 3, RevealedTiles: []int{0, 22}})
		if err != nil {
			t.Fatal(err)
		}
		if !outcome.HitMine || s.Payout != 0 || outcome.Multiplier != 0 {
			t.Errorf("expected a loss on tile 22, got %+v %+v", outcome, s)
		}
	})

	t.Run("safe reveal", func(t *testing.T) {
		outcome, s, err := ResolveMines(random, MinesBet{BetAmount: 10, MinesCount: 3, RevealedTiles: []int{0, 1}})
		if err != nil {
			t.Fatal(err)
		}
		wantMultiplier := math.Pow(22.0/20.0, 1.1)
		if outcome.HitMine {
			t.Fatal("tiles 0 and 1 are safe")
		}
		if outcome.Multiplier != wantMultiplier {
			t.Errorf("multiplier = %v, want %v", outcome.Multiplier, wantMultiplier)
		}
		if s.Payout != 10*wantMultiplier {
			t.Errorf("payout = %v, want %v", s.Payout, 10*wantMultiplier)
		}
	})

	t.Run("invalid count", func(t *testing.T) {
		_, _, err := ResolveMines(random, MinesBet{BetAmount: 10, MinesCount: 30})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestMinesMultiplier(t *testing.T) {
	if MinesMultiplier(22, 0) != 0 {
		t.Error("no reveal must price at zero")
	}
	prev := 0.0
	for revealed := 1; revealed < 22; revealed++ {
		m := MinesMultiplier(22, revealed)
		if m <= prev {
			t.Fatalf("multiplier not increasing at %d: %v <= %v", revealed, m, prev)
		}
		prev = m
	}
}
