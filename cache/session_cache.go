package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"Bt1QDL/model"
)

const sessionKeyPrefix = "acquisition:session:"

// sessionTTL keeps snapshots around long enough for status polling without
// leaking finished sessions forever.
const sessionTTL = time.Hour

// SessionCache mirrors each session's latest status into Redis so the status
// endpoint can answer without touching orchestrator-owned state.
type SessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a SessionCache.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{client: client}
}

// SaveSnapshot stores the session's current state, replacing any previous
// snapshot.
func (c *SessionCache) SaveSnapshot(ctx context.Context, session *model.AcquisitionSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	if err := c.client.Set(ctx, sessionKeyPrefix+session.ID, data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session snapshot: %w", err)
	}
	return nil
}

// GetSnapshot loads a session's latest snapshot. Returns nil when unknown.
func (c *SessionCache) GetSnapshot(ctx context.Context, sessionID string) (*model.AcquisitionSession, error) {
	data, err := c.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}

	var session model.AcquisitionSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}
	return &session, nil
}

// Delete removes a session snapshot.
func (c *SessionCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
