package state

import (
	"context"
	"sort"
	"sync"

	"fairplayServer/game"
)

// HistoryLedger is the record of resolved rounds. Get returns rounds oldest
// first. Results are shared and must be treated as read-only. Discard removes
// a round whose session commit never landed, backing out its profit; an
// unknown roundID is not an error.
type HistoryLedger interface {
	Append(ctx context.Context, user string, r *game.Result) error
	Discard(ctx context.Context, user, roundID string) error
	Get(ctx context.Context, user string) ([]*game.Result, error)
}

// PnLRecord is a wallet's cumulative profit and loss.
type PnLRecord struct {
	WalletAddress string  `json:"walletAddress"`
	Amount        float64 `json:"amount"`
	Rank          int     `json:"rank,omitempty"`
}

// Leaderboard ranks wallets by cumulative profit.
type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]*PnLRecord, error)
	Rank(ctx context.Context, wallet string) (*PnLRecord, error)
}

// MemoryLedger keeps the most recent maxPerUser rounds per user and a
// running PnL per wallet.
type MemoryLedger struct {
	mu         sync.RWMutex
	results    map[string][]*game.Result
	pnl        map[string]float64
	maxPerUser int
}

// NewMemoryLedger caps each user's history at maxPerUser; zero or less
// keeps everything.
func NewMemoryLedger(maxPerUser int) *MemoryLedger {
	return &MemoryLedger{
		results:    make(map[string][]*game.Result),
		pnl:        make(map[string]float64),
		maxPerUser: maxPerUser,
	}
}

func (l *MemoryLedger) Append(_ context.Context, user string, r *game.Result) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.results[user]
	for i, prev := range list {
		// A retried round replaces the row it left behind.
		if prev.ServerSeedHash == r.ServerSeedHash && prev.Nonce == r.Nonce {
			l.pnl[user] -= prev.Profit()
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}

	list = append(list, r)
	if l.maxPerUser > 0 && len(list) > l.maxPerUser {
		list = list[len(list)-l.maxPerUser:]
	}
	l.results[user] = list
	l.pnl[user] += r.Profit()
	return nil
}

func (l *MemoryLedger) Discard(_ context.Context, user, roundID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	list := l.results[user]
	for i, r := range list {
		if r.RoundID == roundID {
			l.pnl[user] -= r.Profit()
			l.results[user] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, user string) ([]*game.Result, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	list := l.results[user]
	out := make([]*game.Result, len(list))
	copy(out, list)
	return out, nil
}

func (l *MemoryLedger) Top(_ context.Context, limit int) ([]*PnLRecord, error) {
	records := l.ranked()
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *MemoryLedger) Rank(_ context.Context, wallet string) (*PnLRecord, error) {
	for _, r := range l.ranked() {
		if r.WalletAddress == wallet {
			return r, nil
		}
	}
	return nil, nil
}

func (l *MemoryLedger) ranked() []*PnLRecord {
	l.mu.RLock()
	records := make([]*PnLRecord, 0, len(l.pnl))
	for wallet, amount := range l.pnl {
		records = append(records, &PnLRecord{WalletAddress: wallet, Amount: amount})
	}
	l.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Amount != records[j].Amount {
			return records[i].Amount > records[j].Amount
		}
		return records[i].WalletAddress < records[j].WalletAddress
	})
	for i, r := range records {
		r.Rank = i + 1
	}
	return records
}

var (
	_ HistoryLedger = (*MemoryLedger)(nil)
	_ Leaderboard   = (*MemoryLedger)(nil)
)
