package main

import (
	"context"
	"fmt"
	"log"

	"fairplayServer/config"
	"fairplayServer/db"
	"fairplayServer/engine"

	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env not found")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()

	pg, err := db.InitPostgres(ctx, cfg.DatabaseURL, cfg.MaxHistoryPerUser)
	if err != nil {
		log.Fatalf("Failed to init postgres: %v", err)
	}
	defer pg.Close()

	// Test wallets with various PnL
	testWallets := []struct {
		addr   string
		amount float64
	}{
		{"0x1234567890123456789012345678901234567890", 250.75},
		{"0xabcdef0123456789abcdef0123456789abcdef01", 185.50},
		{"0x9876543210987654321098765432109876543210", 120.25},
		{"0xdeadbeef00000000000000000000000deadbeef0", 95.00},
		{"0xcafebabe00000000000000000000000cafebabe0", 67.50},
		{"0xfeedface00000000000000000000000feedface0", 45.25},
		{"0xbaadf00d00000000000000000000000baadf00d0", 32.00},
		{"0x8badf00d00000000000000000000000000000000", 18.75},
		{"0xdefec8ed00000000000000000000000000000000", -5.50},
		{"0xb16b00b500000000000000000000000000000000", -25.00},
	}

	fmt.Println("Seeding leaderboard with test data...")

	for _, w := range testWallets {
		wallet, err := engine.NormalizeAddress(w.addr)
		if err != nil {
			log.Printf("Skipping %s: %v", w.addr, err)
			continue
		}

		if err := pg.SetWalletPnL(ctx, wallet, w.amount); err != nil {
			log.Printf("Failed to seed %s: %v", wallet[:10], err)
		} else {
			fmt.Printf("  %s... -> %+.2f\n", wallet[:10], w.amount)
		}
	}

	fmt.Println("\nDone! Testing leaderboard...")

	records, err := pg.Top(ctx, 20)
	if err != nil {
		log.Fatalf("Failed to get leaderboard: %v", err)
	}

	fmt.Printf("\nLeaderboard (%d entries):\n", len(records))
	for _, r := range records {
		fmt.Printf("  #%d %s... %.2f\n", r.Rank, r.WalletAddress[:10], r.Amount)
	}
}
