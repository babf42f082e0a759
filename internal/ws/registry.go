// Package ws carries the websocket surface: match creation, connect
// authentication, the per-connection intent read loop, and fan-out of
// match events to connected clients.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jmansell/camelup/internal/game"
)

// writeTimeout bounds a single event write; a client that cannot keep
// up is disconnected rather than stalling the match.
const writeTimeout = 5 * time.Second

// matchEntry pairs a match with the hub fanning its events out.
type matchEntry struct {
	match *game.CamelMatch
	hub   *matchHub
}

// MatchRegistry tracks running matches by ID.
type MatchRegistry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*matchEntry
}

// NewMatchRegistry returns an empty registry.
func NewMatchRegistry() *MatchRegistry {
	return &MatchRegistry{entries: make(map[uuid.UUID]*matchEntry)}
}

// Create registers a new match and wires its broadcast callbacks to a
// fresh connection hub. The match is removed from the registry when it
// ends.
func (r *MatchRegistry) Create(m *game.CamelMatch) {
	hub := newMatchHub()
	m.BroadcastFn = hub.broadcastAll
	m.BroadcastToPlayerFn = hub.sendTo

	prevOnEnd := m.OnMatchEnd
	m.OnMatchEnd = func(lobbyID uuid.UUID, winner uuid.UUID, coins map[uuid.UUID]int) {
		if prevOnEnd != nil {
			prevOnEnd(lobbyID, winner, coins)
		}
		go r.Remove(m.ID)
	}

	r.mu.Lock()
	r.entries[m.ID] = &matchEntry{match: m, hub: hub}
	r.mu.Unlock()
	logrus.WithField("match", m.ID).Info("match registered")
}

// Get returns a running match and its hub.
func (r *MatchRegistry) Get(id uuid.UUID) (*game.CamelMatch, *matchHub, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, nil, false
	}
	return entry.match, entry.hub, true
}

// Remove drops a match and closes its remaining connections.
func (r *MatchRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	entry.hub.closeAll(websocket.StatusNormalClosure, "Match ended.")
	logrus.WithField("match", id).Info("match removed")
}

// matchHub owns the live connections for one match.
type matchHub struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
}

func newMatchHub() *matchHub {
	return &matchHub{conns: make(map[uuid.UUID]*websocket.Conn)}
}

// register replaces any previous connection for the player.
func (h *matchHub) register(playerID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	prev := h.conns[playerID]
	h.conns[playerID] = conn
	h.mu.Unlock()
	if prev != nil && prev != conn {
		prev.Close(websocket.StatusPolicyViolation, "Superseded by a new connection.")
	}
}

// unregister drops a connection if it is still the player's current one.
func (h *matchHub) unregister(playerID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[playerID] == conn {
		delete(h.conns, playerID)
	}
	h.mu.Unlock()
}

// broadcastAll writes an event to every connection. Write failures only
// log; the read loop notices the dead connection and handles the
// disconnect.
func (h *matchHub) broadcastAll(ev game.GameEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for playerID, conn := range h.conns {
		h.write(playerID, conn, ev)
	}
}

// sendTo writes an event to a single player's connection.
func (h *matchHub) sendTo(playerID uuid.UUID, ev game.GameEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[playerID]
	if !ok {
		return
	}
	h.write(playerID, conn, ev)
}

// write performs one bounded event write.
// Assumes hub lock is held by caller.
func (h *matchHub) write(playerID uuid.UUID, conn *websocket.Conn, ev game.GameEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, conn, ev); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"player": playerID,
			"event":  ev.Type,
		}).Warn("event write failed")
	}
}

// closeAll closes every connection with the given status.
func (h *matchHub) closeAll(code websocket.StatusCode, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for playerID, conn := range h.conns {
		conn.Close(code, reason)
		delete(h.conns, playerID)
	}
}
