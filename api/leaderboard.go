package api

import (
	"log"
	"net/http"
	"strconv"

	"fairplayServer/config"
	"fairplayServer/engine"
)

/* =========================
   RESPONSE TYPES
========================= */

// LeaderboardEntryResponse represents a single leaderboard entry
type LeaderboardEntryResponse struct {
	Rank          int     `json:"rank"`
	WalletAddress string  `json:"walletAddress"`
	Pnl           float64 `json:"pnl"`
}

// LeaderboardResponse represents the leaderboard API response
type LeaderboardResponse struct {
	Success      bool                       `json:"success"`
	Leaderboard  []LeaderboardEntryResponse `json:"leaderboard"`
	UserPosition *LeaderboardEntryResponse  `json:"userPosition,omitempty"`
}

/* =========================
   HTTP ENDPOINTS
========================= */

// HandleGetLeaderboard handles GET /api/leaderboard
// Query params: limit (optional), wallet (optional) - get user's position
func (s *Server) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := config.DefaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > config.MaxLeaderboardLimit {
			sendError(w, r, http.StatusBadRequest, CodeInvalidInput, "limit must be 1-100")
			return
		}
		limit = n
	}

	records, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		log.Printf("❌ Failed to get leaderboard: %v", err)
		sendError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to retrieve leaderboard")
		return
	}

	response := LeaderboardResponse{
		Success:     true,
		Leaderboard: make([]LeaderboardEntryResponse, 0, len(records)),
	}

	for _, record := range records {
		response.Leaderboard = append(response.Leaderboard, LeaderboardEntryResponse{
			Rank:          record.Rank,
			WalletAddress: record.WalletAddress,
			Pnl:           record.Amount,
		})
	}

	if walletParam := r.URL.Query().Get("wallet"); walletParam != "" {
		wallet, err := engine.NormalizeAddress(walletParam)
		if err != nil {
			sendEngineError(w, r, err)
			return
		}

		// Check if user is already on the page
		userInTop := false
		for _, entry := range response.Leaderboard {
			if entry.WalletAddress == wallet {
				userInTop = true
				break
			}
		}

		if !userInTop {
			userRecord, err := s.leaderboard.Rank(ctx, wallet)
			if err != nil {
				log.Printf("⚠️  Failed to get user rank: %v", err)
			} else if userRecord != nil {
				response.UserPosition = &LeaderboardEntryResponse{
					Rank:          userRecord.Rank,
					WalletAddress: userRecord.WalletAddress,
					Pnl:           userRecord.Amount,
				}
			}
		}
	}

	sendJSON(w, r, response)
}
