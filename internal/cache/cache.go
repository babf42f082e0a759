// Package cache publishes match action history to Redis for the
// replay/audit consumer. The client is optional; when Rdb is nil every
// publish is a silent no-op and the match plays on without history.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Rdb is the shared Redis client, initialized once at startup.
var Rdb *redis.Client

// matchActionStream is the list key consumed by the history worker.
const matchActionStream = "camelup:match_actions"

// MatchActionRecord is one ordered entry in a match's action history.
type MatchActionRecord struct {
	MatchID       uuid.UUID              `json:"matchId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Init connects the shared client and verifies the connection.
func Init(ctx context.Context, addr, password string, db int) error {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	Rdb = client
	logrus.WithField("addr", addr).Info("redis connected")
	return nil
}

// PublishMatchAction appends one action record to the history stream.
func PublishMatchAction(ctx context.Context, rec MatchActionRecord) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := Rdb.RPush(ctx, matchActionStream, data).Err(); err != nil {
		return fmt.Errorf("rpush action record: %w", err)
	}
	return nil
}
