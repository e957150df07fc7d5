package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fairplayServer/config"
	"fairplayServer/game"
	"fairplayServer/state"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the durable history ledger and PnL leaderboard.
type Postgres struct {
	pool       *pgxpool.Pool
	maxHistory int
}

// InitPostgres connects, pings and creates the schema. Get returns at most
// maxHistory rounds per user.
func InitPostgres(ctx context.Context, databaseURL string, maxHistory int) (*Postgres, error) {
	log.Println("🔌 Connecting to PostgreSQL...")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Configure pool settings
	poolConfig.MaxConns = config.MaxOpenConns
	poolConfig.MinConns = config.MinIdleConns
	poolConfig.MaxConnLifetime = config.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ PostgreSQL connected successfully")

	p := &Postgres{pool: pool, maxHistory: maxHistory}
	if err := p.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return p, nil
}

// Close closes the PostgreSQL connection pool
func (p *Postgres) Close() {
	log.Println("🔌 Closing PostgreSQL connection...")
	p.pool.Close()
}

// InitSchema creates the database tables if they don't exist
func (p *Postgres) InitSchema(ctx context.Context) error {
	log.Println("📋 Initializing database schema...")

	gameResultsSchema := `
	CREATE TABLE IF NOT EXISTS game_results (
		id BIGSERIAL PRIMARY KEY,
		round_id TEXT NOT NULL UNIQUE,
		user_address TEXT NOT NULL,
		game TEXT NOT NULL,
		nonce BIGINT NOT NULL,
		server_seed_hash TEXT NOT NULL,
		total_bet DOUBLE PRECISION NOT NULL,
		total_winnings DOUBLE PRECISION NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE(server_seed_hash, nonce)
	);

	-- Per-user history, newest first
	CREATE INDEX IF NOT EXISTS idx_game_results_user ON game_results(user_address, id DESC);
	`

	if _, err := p.pool.Exec(ctx, gameResultsSchema); err != nil {
		return fmt.Errorf("failed to create game_results table: %w", err)
	}

	walletPnLSchema := `
	CREATE TABLE IF NOT EXISTS wallet_pnl (
		wallet_address TEXT PRIMARY KEY,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_wallet_pnl_amount ON wallet_pnl(amount DESC);
	`

	if _, err := p.pool.Exec(ctx, walletPnLSchema); err != nil {
		return fmt.Errorf("failed to create wallet_pnl table: %w", err)
	}

	log.Println("✅ Database schema initialized")
	return nil
}

/* =========================
   GAME HISTORY
========================= */

// Append stores a resolved round and moves the wallet's PnL by its profit.
// A row with the same commitment and nonce is an orphan from a round whose
// session commit failed; it is replaced and its profit backed out.
func (p *Postgres) Append(ctx context.Context, user string, r *game.Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal game result: %v", game.ErrInternal, err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", game.ErrInternal, err)
	}
	defer tx.Rollback(ctx)

	var orphanProfit float64
	err = tx.QueryRow(ctx, `
		DELETE FROM game_results
		WHERE server_seed_hash = $1 AND nonce = $2
		RETURNING total_winnings - total_bet
	`, r.ServerSeedHash, int64(r.Nonce)).Scan(&orphanProfit)
	if err != nil && err != pgx.ErrNoRows {
		return fmt.Errorf("%w: failed to clear orphan round: %v", game.ErrInternal, err)
	}
	if err == nil {
		log.Printf("♻️  Replacing orphan round nonce %d for %s", r.Nonce, user)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO game_results
		(round_id, user_address, game, nonce, server_seed_hash, total_bet, total_winnings, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.RoundID, user, string(r.Game), int64(r.Nonce), r.ServerSeedHash,
		r.TotalBet, r.TotalWinnings, payload, r.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: failed to store game result: %v", game.ErrInternal, err)
	}

	if err := adjustWalletPnL(ctx, tx, user, r.Profit()-orphanProfit); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit game result: %v", game.ErrInternal, err)
	}
	return nil
}

// Discard deletes a round whose session commit failed and backs its profit
// out of the wallet's PnL.
func (p *Postgres) Discard(ctx context.Context, user, roundID string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", game.ErrInternal, err)
	}
	defer tx.Rollback(ctx)

	var profit float64
	err = tx.QueryRow(ctx, `
		DELETE FROM game_results
		WHERE round_id = $1 AND user_address = $2
		RETURNING total_winnings - total_bet
	`, roundID, user).Scan(&profit)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to discard round: %v", game.ErrInternal, err)
	}

	if err := adjustWalletPnL(ctx, tx, user, -profit); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit discard: %v", game.ErrInternal, err)
	}

	log.Printf("🗑️  Discarded uncommitted round %s for %s", roundID, user)
	return nil
}

// Get returns the user's most recent rounds, oldest first.
func (p *Postgres) Get(ctx context.Context, user string) ([]*game.Result, error) {
	limit := p.maxHistory
	if limit <= 0 {
		limit = config.DefaultMaxHistoryPerUser
	}

	rows, err := p.pool.Query(ctx, `
		SELECT payload FROM game_results
		WHERE user_address = $1
		ORDER BY id DESC
		LIMIT $2
	`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query history: %v", game.ErrInternal, err)
	}
	defer rows.Close()

	var results []*game.Result
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: failed to scan row: %v", game.ErrInternal, err)
		}
		var r game.Result
		if err := json.Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal game result: %v", game.ErrInternal, err)
		}
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating rows: %v", game.ErrInternal, err)
	}

	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	if results == nil {
		results = []*game.Result{}
	}
	return results, nil
}

/* =========================
   WALLET PNL LEADERBOARD
========================= */

// AdjustWalletPnL moves a wallet's PnL by delta, creating the row if needed.
func (p *Postgres) AdjustWalletPnL(ctx context.Context, walletAddress string, delta float64) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := adjustWalletPnL(ctx, tx, walletAddress, delta); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SetWalletPnL overwrites a wallet's PnL with amount.
func (p *Postgres) SetWalletPnL(ctx context.Context, walletAddress string, amount float64) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM wallet_pnl WHERE wallet_address = $1", walletAddress); err != nil {
		return fmt.Errorf("failed to clear wallet PnL: %w", err)
	}
	if err := adjustWalletPnL(ctx, tx, walletAddress, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func adjustWalletPnL(ctx context.Context, tx pgx.Tx, walletAddress string, delta float64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallet_pnl (wallet_address, amount)
		VALUES ($1, $2)
		ON CONFLICT (wallet_address) DO UPDATE
		SET amount = wallet_pnl.amount + $2
	`, walletAddress, delta)
	if err != nil {
		return fmt.Errorf("%w: failed to update wallet PnL: %v", game.ErrInternal, err)
	}
	return nil
}

// Top returns the top wallets sorted by PnL descending
func (p *Postgres) Top(ctx context.Context, limit int) ([]*state.PnLRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT wallet_address, amount,
		       ROW_NUMBER() OVER (ORDER BY amount DESC, wallet_address) as rank
		FROM wallet_pnl
		ORDER BY amount DESC, wallet_address
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	records := []*state.PnLRecord{}
	for rows.Next() {
		var record state.PnLRecord
		if err := rows.Scan(&record.WalletAddress, &record.Amount, &record.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

// Rank returns a specific wallet's rank and PnL, or nil if it never played
func (p *Postgres) Rank(ctx context.Context, walletAddress string) (*state.PnLRecord, error) {
	query := `
		SELECT wallet_address, amount, rank FROM (
			SELECT wallet_address, amount,
			       ROW_NUMBER() OVER (ORDER BY amount DESC, wallet_address) as rank
			FROM wallet_pnl
		) ranked
		WHERE wallet_address = $1
	`

	var record state.PnLRecord
	err := p.pool.QueryRow(ctx, query, walletAddress).Scan(
		&record.WalletAddress,
		&record.Amount,
		&record.Rank,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet rank: %w", err)
	}

	return &record, nil
}

// HealthCheck pings the pool
func (p *Postgres) HealthCheck(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

var (
	_ state.HistoryLedger = (*Postgres)(nil)
	_ state.Leaderboard   = (*Postgres)(nil)
)
