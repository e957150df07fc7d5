package api

import (
	"log"
	"net/http"

	"fairplayServer/config"
	"fairplayServer/crypto"
	"fairplayServer/game"

	"github.com/go-chi/render"
)

type VerifyRequest struct {
	ClientSeed     string    `json:"clientSeed" validate:"required"`
	ServerSeed     string    `json:"serverSeed" validate:"required"`
	ServerSeedHash string    `json:"serverSeedHash" validate:"required"`
	Nonce          uint64    `json:"nonce"`
	Game           game.Kind `json:"game,omitempty" validate:"omitempty,oneof=roulette mines wheel"`
	MinesCount     int       `json:"minesCount,omitempty" validate:"min=0,max=24"`
}

type VerifyResponse struct {
	Success bool         `json:"success"`
	Valid   bool         `json:"valid"`
	Error   string       `json:"error,omitempty"`
	Replay  *game.Replay `json:"replay,omitempty"`
}

// HandleVerify recomputes a round from revealed seeds so a player can check
// a result independently
// POST /api/verify
func (s *Server) HandleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	var req VerifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		sendError(w, r, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	if err := s.validate.Struct(req); err != nil || (req.Game == game.KindMines && req.MinesCount == 0) {
		sendError(w, r, http.StatusBadRequest, CodeInvalidInput,
			"Required fields: clientSeed, serverSeed, serverSeedHash; minesCount 1-24 for mines")
		return
	}

	// Verify the server seed hash
	if !crypto.VerifySeed(req.ServerSeed, req.ServerSeedHash) {
		sendJSON(w, r, VerifyResponse{
			Success: true,
			Valid:   false,
			Error:   "Server seed hash does not match",
		})
		return
	}

	replay := game.ReplayRound(req.ClientSeed, req.ServerSeed, req.Nonce, req.MinesCount)

	log.Printf("✅ Round verified - Nonce: %d, Random: %.8f", req.Nonce, replay.Random)

	sendJSON(w, r, VerifyResponse{
		Success: true,
		Valid:   true,
		Replay:  &replay,
	})
}
