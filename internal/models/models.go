// Package models holds the service-level data types shared between the
// websocket layer, the match coordinator, and persistence.
package models

import (
	"github.com/google/uuid"

	"github.com/coder/websocket"
)

// User identifies an authenticated account.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Player is one seat in a match. AI seats have no connection and are
// driven by the match coordinator's policy scheduler.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	User      User            `json:"user"`
	Conn      *websocket.Conn `json:"-"`
	Connected bool            `json:"connected"`

	IsAI       bool   `json:"isAi"`
	Difficulty string `json:"difficulty,omitempty"` // "random", "basic", "smart"
}

// GameIntent is a client request to act. The coordinator validates it
// against the current turn and ledger state before it takes effect;
// invalid intents are dropped with a private failure event.
type GameIntent struct {
	IntentType string                 `json:"intentType"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}
