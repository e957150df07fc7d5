package game

import "time"

type Kind string

const (
	KindRoulette Kind = "roulette"
	KindMines    Kind = "mines"
	KindWheel    Kind = "wheel"
)

// Settlement is the money side of a resolved round.
type Settlement struct {
	Stake  float64
	Payout float64
}

// Result is the immutable record of one resolved wager. Exactly one of the
// embedded outcomes is set; its fields are flattened into the JSON object.
type Result struct {
	RoundID     string `json:"roundId"`
	Game        Kind   `json:"game"`
	UserAddress string `json:"userAddress"`

	*RouletteOutcome
	*MinesOutcome
	*WheelOutcome

	TotalBet       float64   `json:"totalBet"`
	TotalWinnings  float64   `json:"totalWinnings"`
	NewBalance     float64   `json:"newBalance"`
	Nonce          uint64    `json:"nonce"`
	Random         float64   `json:"random"`
	ClientSeed     string    `json:"clientSeed"`
	ServerSeed     string    `json:"serverSeed"`
	ServerSeedHash string    `json:"serverSeedHash"`
	Timestamp      time.Time `json:"timestamp"`
}

// Won reports whether the round paid anything back.
func (r *Result) Won() bool {
	return r.TotalWinnings > 0
}

// Profit is the net balance change of the round.
func (r *Result) Profit() float64 {
	return r.TotalWinnings - r.TotalBet
}
