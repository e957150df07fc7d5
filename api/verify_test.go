package api

import (
	"net/http"
	"strings"
	"testing"

	"fairplayServer/config"
	"fairplayServer/crypto"
	"fairplayServer/game"
)

func TestHandleVerify(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantValid  bool
	}{
		{"valid roulette", VerifyRequest{ClientSeed: "abc", ServerSeed: "def", ServerSeedHash: crypto.HashSeed("def"), Nonce: 0}, http.StatusOK, true},
		{"valid mines", VerifyRequest{ClientSeed: "abc", ServerSeed: "def", ServerSeedHash: crypto.HashSeed("def"), Nonce: 0, Game: game.KindMines, MinesCount: 3}, http.StatusOK, true},
		{"hash mismatch", VerifyRequest{ClientSeed: "abc", ServerSeed: "def", ServerSeedHash: crypto.HashSeed("xyz")}, http.StatusOK, false},
		{"missing seed", VerifyRequest{ClientSeed: "abc", ServerSeedHash: "h"}, http.StatusBadRequest, false},
		{"mines without count", VerifyRequest{ClientSeed: "abc", ServerSeed: "def", ServerSeedHash: crypto.HashSeed("def"), Game: game.KindMines}, http.StatusBadRequest, false},
		{"oversized body", `{"clientSeed":"` + strings.Repeat("a", config.MaxRequestBodyBytes) + `","serverSeed":"def","serverSeedHash":"` + crypto.HashSeed("def") + `"}`, http.StatusBadRequest, false},
		{"unknown game", VerifyRequest{ClientSeed: "abc", ServerSeed: "def", ServerSeedHash: crypto.HashSeed("def"), Game: "poker"}, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/verify", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp VerifyResponse
			decode(t, rec, &resp)
			if resp.Valid != tt.wantValid {
				t.Fatalf("valid = %v: %+v", resp.Valid, resp)
			}
			if !resp.Valid {
				return
			}
			if resp.Replay.RouletteValue != 8 || resp.Replay.WheelColor != game.ColorRed {
				t.Errorf("unexpected replay: %+v", resp.Replay)
			}
		})
	}

	rec := do(t, h, http.MethodPost, "/api/verify", VerifyRequest{ClientSeed: "abc", ServerSeed: "def", ServerSeedHash: crypto.HashSeed("def"), Nonce: 0, Game: game.KindMines, MinesCount: 3})
	var resp VerifyResponse
	decode(t, rec, &resp)
	want := []int{23, 22, 5}
	if len(resp.Replay.MinePositions) != 3 {
		t.Fatalf("mine positions %v", resp.Replay.MinePositions)
	}
	for i := range want {
		if resp.Replay.MinePositions[i] != want[i] {
			t.Errorf("mine positions %v, want %v", resp.Replay.MinePositions, want)
		}
	}
}
