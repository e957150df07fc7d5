package config

import "time"

/* =========================
   SESSION DEFAULTS
========================= */

const (
	// Every fresh session starts with this demo balance
	DefaultStartingBalance = 1000.0

	// Keep the last 50 rounds per user
	DefaultMaxHistoryPerUser = 50

	// Idle sessions expire from Redis after a week
	DefaultSessionTTL = 7 * 24 * time.Hour
)

/* =========================
   REDIS KEY PATTERNS
========================= */

const (
	RedisSessionKey = "session:%s" // session:{userAddress}

	// Optimistic transaction retries on a WATCH conflict
	RedisMaxTxRetries = 5
)

/* =========================
   POSTGRESQL CONFIGURATION
========================= */

const (
	// Connection pool settings
	MaxOpenConns    = 25
	MinIdleConns    = 5
	ConnMaxLifetime = 5 * time.Minute

	// Leaderboard page size when the caller does not ask
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

/* =========================
   API CONFIGURATION
========================= */

const (
	// Server settings
	ServerPort = "8080"

	// CORS settings
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "Content-Type, Authorization"

	// HTTP server timeouts
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second

	// Request bodies larger than this are rejected
	MaxRequestBodyBytes = 64 * 1024
)

/* =========================
   WEBSOCKET CONFIGURATION
========================= */

const (
	// WebSocket settings
	WSReadDeadline  = 60 * time.Second
	WSWriteDeadline = 10 * time.Second
	WSPingInterval  = 30 * time.Second

	// Buffer sizes
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024

	// Outbound queue per client before it is dropped
	WSSendBuffer = 256

	// Message size limits
	MaxMessageSize = 4 * 1024
)

/* =========================
   FEED CHANNELS
========================= */

const (
	ChannelRounds     = "rounds"
	ChannelUserPrefix = "user:" // user:{userAddress}
)
