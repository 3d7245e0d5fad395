package api

// Playback-facing endpoints, called by the verification service rather
// than the webapp. They need the Redis cache; without one configured the
// handlers answer 503 so the verifier can fall back to its own store.

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/loop/accessctl/internal/core/cache"
	"github.com/loop/accessctl/internal/types"
)

// getPlaybackConditions serves the resolved wire-format conditions for a
// video, read through the cache. Playback checks hit this on every view,
// so the database is only consulted on a cache miss.
func (s *PolicyAPIService) getPlaybackConditions(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")

	if s.cache != nil {
		rec, err := s.cache.GetPolicy(r.Context(), videoID)
		if err != nil {
			log.Printf("read cached policy for video %s: %v", videoID, err)
		}
		if rec != nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}

	policy, err := s.store.Get(r.Context(), videoID)
	if errors.Is(err, types.ErrPolicyNotFound) {
		writeErr(w, http.StatusNotFound, "Policy not found")
		return
	}
	if err != nil {
		log.Printf("load policy for video %s: %v", videoID, err)
		writeErr(w, http.StatusInternalServerError, "Failed to load policy")
		return
	}

	rec := &cache.PolicyRecord{
		VideoID:    policy.VideoID,
		Conditions: policy.Conditions,
		Visibility: policy.Visibility,
	}
	if s.cache != nil {
		if err := s.cache.SetPolicy(r.Context(), rec); err != nil {
			log.Printf("cache policy for video %s: %v", videoID, err)
		}
	}
	writeJSON(w, http.StatusOK, rec)
}

// accessGrantBody is posted by the verifier after a successful condition
// check. The nonce defends against replayed grants.
type accessGrantBody struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	ExpiresAt int64  `json:"expiresAt"` // unix milliseconds
}

func (s *PolicyAPIService) postAccessGrant(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeErr(w, http.StatusServiceUnavailable, "Playback cache not configured")
		return
	}
	videoID := r.PathValue("videoID")

	var body accessGrantBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Address == "" || body.Nonce == "" {
		writeErr(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	exp := time.UnixMilli(body.ExpiresAt)
	if !exp.After(time.Now()) {
		writeErr(w, http.StatusBadRequest, "Grant already expired")
		return
	}

	fresh, err := s.cache.ClaimNonce(r.Context(), body.Nonce, exp)
	if err != nil {
		log.Printf("claim nonce for video %s: %v", videoID, err)
		writeErr(w, http.StatusInternalServerError, "Failed to record grant")
		return
	}
	if !fresh {
		writeErr(w, http.StatusConflict, "Nonce already used")
		return
	}

	if err := s.cache.GrantAccess(r.Context(), videoID, body.Address, exp); err != nil {
		log.Printf("record access grant for video %s: %v", videoID, err)
		writeErr(w, http.StatusInternalServerError, "Failed to record grant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *PolicyAPIService) getAccess(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeErr(w, http.StatusServiceUnavailable, "Playback cache not configured")
		return
	}
	videoID := r.PathValue("videoID")
	address := r.PathValue("address")

	granted, err := s.cache.HasAccess(r.Context(), videoID, address)
	if err != nil {
		log.Printf("check access for video %s: %v", videoID, err)
		writeErr(w, http.StatusInternalServerError, "Failed to check access")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"access": granted})
}
