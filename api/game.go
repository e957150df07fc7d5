package api

import (
	"log"
	"net/http"

	"fairplayServer/config"
	"fairplayServer/engine"
	"fairplayServer/game"

	"github.com/go-chi/render"
)

// Actions accepted by POST /api/game
const (
	ActionInitialize   = "initialize"
	ActionGetSession   = "getSession"
	ActionPlayRoulette = "playRoulette"
	ActionPlayMines    = "playMines"
	ActionPlayWheel    = "playWheel"
	ActionGetHistory   = "getHistory"
)

/* =========================
   REQUEST/RESPONSE TYPES
========================= */

// GameRequest is the union of every action's fields
type GameRequest struct {
	Action      string `json:"action"`
	UserAddress string `json:"userAddress"`

	// initialize
	ClientSeed string `json:"clientSeed,omitempty"`

	// playRoulette
	Bets []game.RouletteBet `json:"bets,omitempty"`

	// playMines, playWheel
	BetAmount     float64    `json:"betAmount,omitempty"`
	MinesCount    int        `json:"minesCount,omitempty"`
	RevealedTiles []int      `json:"revealedTiles,omitempty"`
	SelectedColor game.Color `json:"selectedColor,omitempty"`
}

// SessionResponse answers initialize and getSession
type SessionResponse struct {
	Success bool `json:"success"`
	*engine.SessionInfo
}

// PlayResponse answers every play action
type PlayResponse struct {
	Success    bool         `json:"success"`
	GameResult *game.Result `json:"gameResult"`
}

// HistoryResponse answers getHistory
type HistoryResponse struct {
	Success bool           `json:"success"`
	History []*game.Result `json:"history"`
}

/* =========================
   HTTP ENDPOINTS
========================= */

// HandleGame dispatches on the request's action field
// POST /api/game
func (s *Server) HandleGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	var req GameRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		sendError(w, r, http.StatusBadRequest, CodeInvalidInput, "Invalid request body")
		return
	}

	ctx := r.Context()

	switch req.Action {
	case ActionInitialize:
		info, err := s.engine.Initialize(ctx, req.UserAddress, req.ClientSeed)
		if err != nil {
			sendEngineError(w, r, err)
			return
		}
		sendJSON(w, r, SessionResponse{Success: true, SessionInfo: info})

	case ActionGetSession:
		info, err := s.engine.Session(ctx, req.UserAddress)
		if err != nil {
			sendEngineError(w, r, err)
			return
		}
		sendJSON(w, r, SessionResponse{Success: true, SessionInfo: info})

	case ActionPlayRoulette:
		result, err := s.engine.PlayRoulette(ctx, req.UserAddress, req.Bets)
		s.sendPlay(w, r, result, err)

	case ActionPlayMines:
		result, err := s.engine.PlayMines(ctx, req.UserAddress, game.MinesBet{
			BetAmount:     req.BetAmount,
			MinesCount:    req.MinesCount,
			RevealedTiles: req.RevealedTiles,
		})
		s.sendPlay(w, r, result, err)

	case ActionPlayWheel:
		result, err := s.engine.PlayWheel(ctx, req.UserAddress, game.WheelBet{
			BetAmount:     req.BetAmount,
			SelectedColor: req.SelectedColor,
		})
		s.sendPlay(w, r, result, err)

	case ActionGetHistory:
		history, err := s.engine.History(ctx, req.UserAddress)
		if err != nil {
			sendEngineError(w, r, err)
			return
		}
		sendJSON(w, r, HistoryResponse{Success: true, History: history})

	default:
		log.Printf("⚠️  Unknown action: %q", req.Action)
		sendError(w, r, http.StatusBadRequest, CodeInvalidInput, "Unknown action: "+req.Action)
	}
}

func (s *Server) sendPlay(w http.ResponseWriter, r *http.Request, result *game.Result, err error) {
	if err != nil {
		sendEngineError(w, r, err)
		return
	}
	sendJSON(w, r, PlayResponse{Success: true, GameResult: result})
}
