package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/loop/accessctl/internal/litwire"
	"github.com/loop/accessctl/internal/types"
	"github.com/loop/accessctl/internal/unlock"
)

// Policy is a video's persisted access policy: the wire-format projection
// of its rule tree plus pricing. The tree itself is never stored.
type Policy struct {
	VideoID    string
	TokenID    string
	Conditions litwire.Conditions
	Price      unlock.Price
	Visibility string
	UpdatedAt  time.Time
}

// policyRow is the flat database shape; conditions travel as JSON text.
type policyRow struct {
	VideoID       string    `db:"video_id"`
	TokenID       string    `db:"token_id"`
	Conditions    string    `db:"conditions"`
	PriceAmount   string    `db:"price_amount"`
	PriceCurrency string    `db:"price_currency"`
	Visibility    string    `db:"visibility"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Store persists video policies.
type Store struct {
	q *Queries
}

// NewStore creates a policy store over an open database.
func NewStore(database *sqlx.DB) (*Store, error) {
	if database == nil {
		return nil, fmt.Errorf("database cannot be nil")
	}
	q, err := LoadQueries(database)
	if err != nil {
		return nil, err
	}
	return &Store{q: q}, nil
}

// Put upserts a video's policy. The caller's UpdatedAt is stored as-is so
// the echoed timestamp matches the row; a zero value falls back to now.
func (s *Store) Put(ctx context.Context, p Policy) error {
	serialized, err := json.Marshal(p.Conditions)
	if err != nil {
		return fmt.Errorf("failed to serialize conditions: %w", err)
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err = s.q.Exec(ctx, "upsert-policy",
		p.VideoID, p.TokenID, string(serialized),
		p.Price.Amount, p.Price.Currency, p.Visibility, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to store policy for video %s: %w", p.VideoID, err)
	}
	return nil
}

// Get returns a video's stored policy, or types.ErrPolicyNotFound.
func (s *Store) Get(ctx context.Context, videoID string) (Policy, error) {
	var row policyRow
	if err := s.q.Get(ctx, "get-policy", &row, videoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Policy{}, types.ErrPolicyNotFound
		}
		return Policy{}, fmt.Errorf("failed to load policy for video %s: %w", videoID, err)
	}

	var conds litwire.Conditions
	if err := json.Unmarshal([]byte(row.Conditions), &conds); err != nil {
		return Policy{}, fmt.Errorf("stored conditions for video %s are corrupt: %w", videoID, err)
	}

	return Policy{
		VideoID:    row.VideoID,
		TokenID:    row.TokenID,
		Conditions: conds,
		Price: unlock.Price{
			Amount:              row.PriceAmount,
			Currency:            row.PriceCurrency,
			DenominatedSubunits: row.PriceAmount,
		},
		Visibility: row.Visibility,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

// SetTokenID records the video's minted on-chain token id and substitutes
// it for the pre-mint placeholder in the stored conditions. Runs after the
// NFT mint completes, before the policy is encrypted into metadata.
func (s *Store) SetTokenID(ctx context.Context, videoID, tokenID string) error {
	p, err := s.Get(ctx, videoID)
	if err != nil {
		return err
	}

	serialized, err := json.Marshal(p.Conditions)
	if err != nil {
		return fmt.Errorf("failed to serialize conditions: %w", err)
	}
	substituted := litwire.SubstituteTokenID(serialized, tokenID)

	_, err = s.q.Exec(ctx, "set-policy-token", tokenID, string(substituted), time.Now().UTC(), videoID)
	if err != nil {
		return fmt.Errorf("failed to set token id for video %s: %w", videoID, err)
	}
	return nil
}
