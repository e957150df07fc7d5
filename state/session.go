package state

import (
	"context"
	"fmt"
	"time"

	"fairplayServer/game"
)

// Session is one user's seed commitment plus ledger.
type Session struct {
	UserAddress    string    `json:"userAddress"`
	ServerSeed     string    `json:"serverSeed"`
	ServerSeedHash string    `json:"serverSeedHash"`
	ClientSeed     string    `json:"clientSeed"`
	Nonce          uint64    `json:"nonce"`
	Balance        float64   `json:"balance"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UpdateFunc receives the current session and returns the session to
// commit. Returning an error aborts the update with nothing written.
type UpdateFunc func(current Session) (Session, error)

// SessionStore owns every Session. Mutations for the same user are
// serialized; different users never wait on each other.
type SessionStore interface {
	Get(ctx context.Context, user string) (Session, error)
	GetOrCreate(ctx context.Context, user string, create func() (Session, error)) (Session, bool, error)
	Replace(ctx context.Context, user string, s Session) (*Session, error)
	AtomicUpdate(ctx context.Context, user string, fn UpdateFunc) (Session, error)
}

// CheckTransition enforces the ledger rules every committed round must
// follow: same commitment, nonce advanced by exactly one, balance not
// negative.
func CheckTransition(prev, next Session) error {
	if next.ServerSeed != prev.ServerSeed || next.ServerSeedHash != prev.ServerSeedHash || next.ClientSeed != prev.ClientSeed {
		return fmt.Errorf("%w: seed commitment changed during update", game.ErrInternal)
	}
	if next.Nonce != prev.Nonce+1 {
		return fmt.Errorf("%w: nonce moved from %d to %d", game.ErrInternal, prev.Nonce, next.Nonce)
	}
	if next.Balance < 0 {
		return fmt.Errorf("%w: balance would go negative", game.ErrInternal)
	}
	return nil
}
