// Command simulate plays many rounds of each game on fresh seeds and prints
// the observed return to player next to the expected one.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"fairplayServer/crypto"
	"fairplayServer/game"
)

type simConfig struct {
	Batches    int
	Rounds     int
	MinesCount int
	Reveals    int
}

func parseConfig(fs *flag.FlagSet, args []string) (simConfig, error) {
	var cfg simConfig
	fs.IntVar(&cfg.Batches, "batches", 5, "number of batches, each on a fresh seed pair")
	fs.IntVar(&cfg.Rounds, "rounds", 10000, "rounds per game per batch")
	fs.IntVar(&cfg.MinesCount, "mines", 3, "mines on the grid")
	fs.IntVar(&cfg.Reveals, "reveals", 2, "tiles revealed per mines round")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Batches < 1 || cfg.Rounds < 1 {
		return cfg, fmt.Errorf("-batches and -rounds must be positive")
	}
	bet := game.MinesBet{BetAmount: 1, MinesCount: cfg.MinesCount, RevealedTiles: firstTiles(cfg.Reveals)}
	if err := game.ValidateMinesBet(bet); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func firstTiles(n int) []int {
	tiles := make([]int, 0, n)
	for i := 0; i < n; i++ {
		tiles = append(tiles, i)
	}
	return tiles
}

// tally is stake and payout for one strategy.
type tally struct {
	name   string
	staked float64
	paid   float64
	wins   int
	rounds int
}

func (t *tally) add(s game.Settlement) {
	t.staked += s.Stake
	t.paid += s.Payout
	t.rounds++
	if s.Payout > 0 {
		t.wins++
	}
}

func (t *tally) rtp() float64 {
	if t.staked == 0 {
		return 0
	}
	return t.paid / t.staked
}

// simulateBatch plays cfg.Rounds nonces on one seed pair.
func simulateBatch(cfg simConfig, clientSeed, serverSeed string) []*tally {
	red := &tally{name: "roulette red"}
	straight := &tally{name: "roulette straight 17"}
	mines := &tally{name: fmt.Sprintf("mines %d/%d", cfg.MinesCount, cfg.Reveals)}
	wheel := make(map[game.Color]*tally)
	for _, s := range game.WheelSegments {
		wheel[s.Color] = &tally{name: "wheel " + string(s.Color)}
	}

	minesBet := game.MinesBet{BetAmount: 1, MinesCount: cfg.MinesCount, RevealedTiles: firstTiles(cfg.Reveals)}
	straightUp := 17

	for nonce := uint64(0); nonce < uint64(cfg.Rounds); nonce++ {
		random := game.Derive(clientSeed, serverSeed, nonce)

		_, s := game.SpinRoulette(random, []game.RouletteBet{{Type: game.BetRed, Amount: 1}})
		red.add(s)
		_, s = game.SpinRoulette(random, []game.RouletteBet{{Type: game.BetNumber, Value: &straightUp, Amount: 1}})
		straight.add(s)

		if _, s, err := game.ResolveMines(random, minesBet); err == nil {
			mines.add(s)
		}

		for _, seg := range game.WheelSegments {
			if _, s, err := game.SpinWheel(random, game.WheelBet{BetAmount: 1, SelectedColor: seg.Color}); err == nil {
				wheel[seg.Color].add(s)
			}
		}
	}

	tallies := []*tally{red, straight, mines}
	for _, seg := range game.WheelSegments {
		tallies = append(tallies, wheel[seg.Color])
	}
	return tallies
}

// expectedRTP is the theoretical return of each strategy, in tally order.
func expectedRTP(cfg simConfig) []float64 {
	total := float64(game.WheelTotalWeight())

	// P(no mine among the revealed tiles)
	safe := float64(game.SafeCells(cfg.MinesCount))
	pSafe := 1.0
	for i := 0; i < cfg.Reveals; i++ {
		pSafe *= (safe - float64(i)) / float64(game.MinesGridSize-i)
	}
	minesRTP := 0.0
	if cfg.Reveals > 0 {
		minesRTP = pSafe * game.MinesMultiplier(game.SafeCells(cfg.MinesCount), cfg.Reveals)
	}

	out := []float64{
		18.0 / game.RouletteSlots * game.EvenMoneyPayout,
		1.0 / game.RouletteSlots * game.StraightUpPayout,
		minesRTP,
	}
	for _, seg := range game.WheelSegments {
		out = append(out, float64(seg.Weight)/total*float64(seg.Multiplier))
	}
	return out
}

func run(cfg simConfig, out io.Writer) error {
	fmt.Fprintf(out, "🎲 Running %d batches of %d rounds per game...\n\n", cfg.Batches, cfg.Rounds)

	expected := expectedRTP(cfg)
	var totals []*tally

	for batch := 1; batch <= cfg.Batches; batch++ {
		serverSeed, _, err := crypto.GenerateServerSeed()
		if err != nil {
			return err
		}
		clientSeed, err := crypto.GenerateClientSeed()
		if err != nil {
			return err
		}

		tallies := simulateBatch(cfg, clientSeed, serverSeed)
		if totals == nil {
			totals = make([]*tally, len(tallies))
			for i, t := range tallies {
				totals[i] = &tally{name: t.name}
			}
		}

		fmt.Fprintf(out, "Batch %d:", batch)
		for i, t := range tallies {
			totals[i].staked += t.staked
			totals[i].paid += t.paid
			totals[i].wins += t.wins
			totals[i].rounds += t.rounds
			fmt.Fprintf(out, " | %s %.1f%%", t.name, t.rtp()*100)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\n%-22s %10s %10s %10s\n", "strategy", "hit rate", "RTP", "expected")
	for i, t := range totals {
		fmt.Fprintf(out, "%-22s %9.2f%% %9.2f%% %9.2f%%\n",
			t.name, float64(t.wins)/float64(t.rounds)*100, t.rtp()*100, expected[i]*100)
	}
	return nil
}

func main() {
	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := run(cfg, os.Stdout); err != nil {
		log.Fatalf("❌ %v", err)
	}
}
