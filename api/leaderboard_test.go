package api

import (
	"context"
	"net/http"
	"testing"

	"fairplayServer/engine"
	"fairplayServer/game"
	"fairplayServer/state"
)

func TestHandleGetLeaderboard(t *testing.T) {
	ctx := context.Background()
	ledger := state.NewMemoryLedger(0)
	h := NewServer(engine.New(state.NewMemorySessionStore(), ledger), ledger).Router()

	winner, _ := engine.NormalizeAddress("0x1111111111111111111111111111111111111111")
	loser, _ := engine.NormalizeAddress(testUser)
	ledger.Append(ctx, winner, &game.Result{TotalBet: 5, TotalWinnings: 50})
	ledger.Append(ctx, loser, &game.Result{TotalBet: 20})

	rec := do(t, h, http.MethodGet, "/api/leaderboard?limit=1&wallet="+testUser, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var resp LeaderboardResponse
	decode(t, rec, &resp)
	if len(resp.Leaderboard) != 1 || resp.Leaderboard[0].WalletAddress != winner || resp.Leaderboard[0].Pnl != 45 {
		t.Fatalf("unexpected leaderboard: %+v", resp.Leaderboard)
	}
	if resp.UserPosition == nil || resp.UserPosition.Rank != 2 || resp.UserPosition.Pnl != -20 {
		t.Errorf("unexpected user position: %+v", resp.UserPosition)
	}

	if rec := do(t, h, http.MethodGet, "/api/leaderboard?wallet=nope", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad wallet status %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/leaderboard?limit=0", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status %d", rec.Code)
	}
}
