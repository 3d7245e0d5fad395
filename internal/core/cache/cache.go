// Package cache provides a Redis-backed cache for playback access grants
// and resolved video policies. The policy store in internal/core/db stays
// the source of truth; cache entries are advisory and expire on their own.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loop/accessctl/internal/litwire"
)

const (
	pingTimeout = 5 * time.Second

	// Resolved policies are re-read from the database after this long so
	// edits made through the policy API propagate to playback checks.
	policyTTL = 5 * time.Minute
)

// PolicyRecord is the cached projection of a video's access policy handed
// to playback verification.
type PolicyRecord struct {
	VideoID    string             `json:"videoId"`
	Conditions litwire.Conditions `json:"conditions"`
	Visibility string             `json:"visibility"`
}

// Client wraps a Redis connection with the key conventions used by the
// playback access flow.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis at the given URL and verifies the connection
// with a ping before returning.
func NewClient(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func policyKey(videoID string) string {
	return "policy:" + videoID
}

func nonceKey(nonce string) string {
	return "nonce:" + nonce
}

func accessKey(videoID, address string) string {
	return "access:" + videoID + ":" + address
}

// SetPolicy caches a resolved policy record for a video.
func (c *Client) SetPolicy(ctx context.Context, rec *PolicyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal policy record: %w", err)
	}
	return c.rdb.Set(ctx, policyKey(rec.VideoID), data, policyTTL).Err()
}

// GetPolicy returns the cached policy record for a video, or (nil, nil)
// when the entry is absent or expired.
func (c *Client) GetPolicy(ctx context.Context, videoID string) (*PolicyRecord, error) {
	data, err := c.rdb.Get(ctx, policyKey(videoID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec PolicyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal policy record: %w", err)
	}
	return &rec, nil
}

// InvalidatePolicy drops the cached record for a video. Called after a
// policy write so the next playback check sees the new conditions.
func (c *Client) InvalidatePolicy(ctx context.Context, videoID string) error {
	return c.rdb.Del(ctx, policyKey(videoID)).Err()
}

// ClaimNonce records a signing nonce until its expiry. Returns false when
// the nonce was already claimed, which indicates a replayed request.
func (c *Client) ClaimNonce(ctx context.Context, nonce string, exp time.Time) (bool, error) {
	return c.rdb.SetNX(ctx, nonceKey(nonce), exp.UnixMilli(), time.Until(exp)).Result()
}

// GrantAccess records that an address passed the access check for a video,
// valid until exp.
func (c *Client) GrantAccess(ctx context.Context, videoID, address string, exp time.Time) error {
	return c.rdb.Set(ctx, accessKey(videoID, address), "t", time.Until(exp)).Err()
}

// HasAccess reports whether an unexpired access grant exists for the
// address and video.
func (c *Client) HasAccess(ctx context.Context, videoID, address string) (bool, error) {
	n, err := c.rdb.Exists(ctx, accessKey(videoID, address)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
