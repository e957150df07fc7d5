package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fairplayServer/config"
	"fairplayServer/crypto"
	"fairplayServer/game"
	"fairplayServer/state"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Publisher receives every committed round.
type Publisher interface {
	PublishResult(r *game.Result)
}

// Engine runs rounds: lock the user's session, derive randomness, resolve,
// commit balance and nonce, record the result.
type Engine struct {
	sessions        state.SessionStore
	ledger          state.HistoryLedger
	publisher       Publisher
	startingBalance float64
	validate        *validator.Validate
	now             func() time.Time
}

type Option func(*Engine)

func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithStartingBalance(balance float64) Option {
	return func(e *Engine) { e.startingBalance = balance }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(sessions state.SessionStore, ledger state.HistoryLedger, opts ...Option) *Engine {
	e := &Engine{
		sessions:        sessions,
		ledger:          ledger,
		startingBalance: config.DefaultStartingBalance,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SessionInfo is the public view of a session. The server seed itself is
// never part of it; only a replaced seed is revealed.
type SessionInfo struct {
	UserAddress            string  `json:"userAddress"`
	ServerSeedHash         string  `json:"serverSeedHash"`
	ClientSeed             string  `json:"clientSeed"`
	Balance                float64 `json:"balance"`
	Nonce                  uint64  `json:"nonce"`
	PreviousServerSeed     string  `json:"previousServerSeed,omitempty"`
	PreviousServerSeedHash string  `json:"previousServerSeedHash,omitempty"`
}

func sessionInfo(s state.Session) *SessionInfo {
	return &SessionInfo{
		UserAddress:    s.UserAddress,
		ServerSeedHash: s.ServerSeedHash,
		ClientSeed:     s.ClientSeed,
		Balance:        s.Balance,
		Nonce:          s.Nonce,
	}
}

// NormalizeAddress checks a 0x-prefixed 20 byte hex address and returns its
// checksummed form, so case variants share one session.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: userAddress is required", game.ErrInvalidInput)
	}
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return "", fmt.Errorf("%w: userAddress must be 0x-prefixed", game.ErrInvalidInput)
	}
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: invalid userAddress %q", game.ErrInvalidInput, address)
	}
	return common.HexToAddress(address).Hex(), nil
}

func (e *Engine) newSession(user, clientSeed string) (state.Session, error) {
	serverSeed, hash, err := crypto.GenerateServerSeed()
	if err != nil {
		return state.Session{}, fmt.Errorf("%w: %v", game.ErrInternal, err)
	}
	if clientSeed == "" {
		if clientSeed, err = crypto.GenerateClientSeed(); err != nil {
			return state.Session{}, fmt.Errorf("%w: %v", game.ErrInternal, err)
		}
	}
	return state.Session{
		UserAddress:    user,
		ServerSeed:     serverSeed,
		ServerSeedHash: hash,
		ClientSeed:     clientSeed,
		Nonce:          0,
		Balance:        e.startingBalance,
		CreatedAt:      e.now().UTC(),
	}, nil
}

// Initialize commits a fresh server seed for the user and resets balance and
// nonce. Any previous session is replaced and its server seed revealed.
func (e *Engine) Initialize(ctx context.Context, userAddress, clientSeed string) (*SessionInfo, error) {
	user, err := NormalizeAddress(userAddress)
	if err != nil {
		return nil, err
	}
	if err := e.validate.Var(clientSeed, "omitempty,max=128,printascii"); err != nil {
		return nil, fmt.Errorf("%w: clientSeed must be printable ASCII up to 128 characters", game.ErrInvalidInput)
	}

	s, err := e.newSession(user, clientSeed)
	if err != nil {
		return nil, err
	}

	previous, err := e.sessions.Replace(ctx, user, s)
	if err != nil {
		return nil, err
	}

	info := sessionInfo(s)
	if previous != nil {
		info.PreviousServerSeed = previous.ServerSeed
		info.PreviousServerSeedHash = previous.ServerSeedHash
		if previous.Nonce == 0 {
			log.Printf("⚠️  %s re-initialized before playing, discarded commitment %s", user, shortHash(previous.ServerSeedHash))
		}
	}

	log.Printf("🎲 Session initialized - User: %s, Hash: %s", user, shortHash(s.ServerSeedHash))
	return info, nil
}

// Session returns the user's session, creating one with a fresh commitment
// if there is none.
func (e *Engine) Session(ctx context.Context, userAddress string) (*SessionInfo, error) {
	user, err := NormalizeAddress(userAddress)
	if err != nil {
		return nil, err
	}

	s, created, err := e.sessions.GetOrCreate(ctx, user, func() (state.Session, error) {
		return e.newSession(user, "")
	})
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("🎲 Session created - User: %s, Hash: %s", user, shortHash(s.ServerSeedHash))
	}
	return sessionInfo(s), nil
}

// History returns the user's recorded rounds, oldest first.
func (e *Engine) History(ctx context.Context, userAddress string) ([]*game.Result, error) {
	user, err := NormalizeAddress(userAddress)
	if err != nil {
		return nil, err
	}
	return e.ledger.Get(ctx, user)
}

// resolver turns the derived value into an outcome on the result and the
// money that moves.
type resolver func(random float64, r *game.Result) (game.Settlement, error)

// play runs one round under the user's lock. Nothing is written unless the
// resolver succeeds and the stake is covered. The result is recorded before
// the session commit; a row whose commit never lands is discarded, whether
// the update fails or retries against a moved session.
func (e *Engine) play(ctx context.Context, userAddress string, kind game.Kind, stake float64, resolve resolver) (*game.Result, error) {
	user, err := NormalizeAddress(userAddress)
	if err != nil {
		return nil, err
	}

	var pending *game.Result
	_, err = e.sessions.AtomicUpdate(ctx, user, func(current state.Session) (state.Session, error) {
		if pending != nil && (pending.ServerSeedHash != current.ServerSeedHash || pending.Nonce != current.Nonce) {
			e.discard(ctx, user, pending)
			pending = nil
		}

		if stake > current.Balance {
			return current, fmt.Errorf("%w: stake %.4f exceeds balance %.4f",
				game.ErrInsufficientBalance, stake, current.Balance)
		}

		random := game.Derive(current.ClientSeed, current.ServerSeed, current.Nonce)
		r := &game.Result{
			RoundID:        uuid.NewString(),
			Game:           kind,
			UserAddress:    user,
			Nonce:          current.Nonce,
			Random:         random,
			ClientSeed:     current.ClientSeed,
			ServerSeed:     current.ServerSeed,
			ServerSeedHash: current.ServerSeedHash,
			Timestamp:      e.now().UTC(),
		}

		settlement, err := resolve(random, r)
		if err != nil {
			return current, err
		}

		next := current
		next.Balance = current.Balance - settlement.Stake + settlement.Payout
		next.Nonce = current.Nonce + 1

		r.TotalBet = settlement.Stake
		r.TotalWinnings = settlement.Payout
		r.NewBalance = next.Balance

		// Same commitment and nonce replaces the previous attempt's row.
		if err := e.ledger.Append(ctx, user, r); err != nil {
			return current, err
		}
		pending = r
		return next, nil
	})
	if err != nil {
		if pending != nil && !e.committed(ctx, user, pending) {
			e.discard(ctx, user, pending)
		}
		if errors.Is(err, game.ErrInternal) {
			log.Printf("❌ %s round failed for %s: %v", kind, user, err)
		}
		return nil, err
	}
	result := pending

	log.Printf("🎰 %s resolved - User: %s, Nonce: %d, Bet: %.4f, Won: %.4f, Balance: %.4f",
		kind, user, result.Nonce, result.TotalBet, result.TotalWinnings, result.NewBalance)

	if e.publisher != nil {
		e.publisher.PublishResult(result)
	}
	return result, nil
}

// committed reports whether the session already moved past r under the same
// commitment, which means the write landed even though the update errored.
func (e *Engine) committed(ctx context.Context, user string, r *game.Result) bool {
	s, err := e.sessions.Get(context.WithoutCancel(ctx), user)
	if err != nil {
		return false
	}
	return s.ServerSeedHash == r.ServerSeedHash && s.Nonce > r.Nonce
}

func (e *Engine) discard(ctx context.Context, user string, r *game.Result) {
	if err := e.ledger.Discard(context.WithoutCancel(ctx), user, r.RoundID); err != nil {
		log.Printf("⚠️  Failed to discard uncommitted round %s for %s: %v", r.RoundID, user, err)
	}
}

// PlayRoulette settles a slip of roulette bets on one spin.
func (e *Engine) PlayRoulette(ctx context.Context, userAddress string, bets []game.RouletteBet) (*game.Result, error) {
	if err := e.validate.Var(bets, "required,min=1,dive"); err != nil {
		return nil, validationError(err)
	}
	if err := game.ValidateRouletteBets(bets); err != nil {
		return nil, err
	}

	return e.play(ctx, userAddress, game.KindRoulette, game.RouletteStake(bets), func(random float64, r *game.Result) (game.Settlement, error) {
		outcome, settlement := game.SpinRoulette(random, bets)
		r.RouletteOutcome = outcome
		return settlement, nil
	})
}

// PlayMines settles a single-shot mines round.
func (e *Engine) PlayMines(ctx context.Context, userAddress string, bet game.MinesBet) (*game.Result, error) {
	if err := e.validate.Struct(bet); err != nil {
		return nil, validationError(err)
	}
	if err := game.ValidateMinesBet(bet); err != nil {
		return nil, err
	}

	return e.play(ctx, userAddress, game.KindMines, bet.BetAmount, func(random float64, r *game.Result) (game.Settlement, error) {
		outcome, settlement, err := game.ResolveMines(random, bet)
		if err != nil {
			return settlement, err
		}
		r.MinesOutcome = outcome
		return settlement, nil
	})
}

// PlayWheel settles one wheel spin on the selected colour.
func (e *Engine) PlayWheel(ctx context.Context, userAddress string, bet game.WheelBet) (*game.Result, error) {
	if err := e.validate.Struct(bet); err != nil {
		return nil, validationError(err)
	}

	return e.play(ctx, userAddress, game.KindWheel, bet.BetAmount, func(random float64, r *game.Result) (game.Settlement, error) {
		outcome, settlement, err := game.SpinWheel(random, bet)
		if err != nil {
			return settlement, err
		}
		r.WheelOutcome = outcome
		return settlement, nil
	})
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}
