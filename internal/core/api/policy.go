package api

// Handlers validate in two passes: the wire structure itself, then the
// rule tree recovered from it. Database errors map to 500, lookup misses
// to 404, malformed or invalid bodies to 400.

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/loop/accessctl/internal/core/db"
	"github.com/loop/accessctl/internal/litwire"
	"github.com/loop/accessctl/internal/rules"
	"github.com/loop/accessctl/internal/types"
	"github.com/loop/accessctl/internal/unlock"
)

// policyBody is the request and response shape for policy reads and writes.
type policyBody struct {
	Conditions litwire.Conditions `json:"conditions"`
	Price      unlock.Price       `json:"price"`
	Visibility string             `json:"visibility"`
	UpdatedAt  time.Time          `json:"updatedAt,omitzero"`
}

func (s *PolicyAPIService) putPolicy(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")

	var body policyBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := litwire.Check(body.Conditions); err != nil {
		if errors.Is(err, types.ErrConditionsTooDeep) {
			writeErr(w, http.StatusBadRequest, "Conditions nested too deeply")
			return
		}
		writeErr(w, http.StatusBadRequest, "Invalid access control conditions")
		return
	}
	if err := rules.ValidateState(s.conv.FromWire(body.Conditions)); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := unlock.ParseAmount(body.Price.Amount); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid price amount")
		return
	}

	if body.Visibility == "" {
		body.Visibility = "protected"
	}

	err := s.store.Put(r.Context(), db.Policy{
		VideoID:    videoID,
		Conditions: body.Conditions,
		Price:      body.Price,
		Visibility: body.Visibility,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Printf("store policy for video %s: %v", videoID, err)
		writeErr(w, http.StatusInternalServerError, "Failed to store policy")
		return
	}

	s.invalidate(r, videoID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *PolicyAPIService) getPolicy(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")

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

	writeJSON(w, http.StatusOK, policyBody{
		Conditions: policy.Conditions,
		Price:      policy.Price,
		Visibility: policy.Visibility,
		UpdatedAt:  policy.UpdatedAt,
	})
}

func (s *PolicyAPIService) getUnlockOptions(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")

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

	state := s.conv.FromWire(policy.Conditions)
	writeJSON(w, http.StatusOK, unlock.Derive(state, policy.Price))
}

// templateBody carries the optional pricing for a freshly templated policy.
type templateBody struct {
	Price unlock.Price `json:"price"`
}

// postTemplate seeds a video with the default policy. The owner and
// paywall token ids stay as placeholders until the video NFT is minted.
func (s *PolicyAPIService) postTemplate(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")

	var body templateBody
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeErr(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if _, err := unlock.ParseAmount(body.Price.Amount); err != nil {
		writeErr(w, http.StatusBadRequest, "Invalid price amount")
		return
	}

	state := rules.Default(rules.TemplateConfig{
		Chain:    s.cfg.ChainID(),
		VideoNFT: s.cfg.Contracts.VideoNFT,
		USDC:     s.cfg.Contracts.USDC,
	})
	conditions := s.conv.ToWire(state)

	policy := db.Policy{
		VideoID:    videoID,
		Conditions: conditions,
		Price:      body.Price,
		Visibility: "protected",
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.store.Put(r.Context(), policy); err != nil {
		log.Printf("store template policy for video %s: %v", videoID, err)
		writeErr(w, http.StatusInternalServerError, "Failed to store policy")
		return
	}

	s.invalidate(r, videoID)
	writeJSON(w, http.StatusCreated, policyBody{
		Conditions: policy.Conditions,
		Price:      policy.Price,
		Visibility: policy.Visibility,
		UpdatedAt:  policy.UpdatedAt,
	})
}

// tokenBody carries the minted NFT token id.
type tokenBody struct {
	TokenID string `json:"tokenId"`
}

// putToken records the token id minted for a video and substitutes it
// into every placeholder slot of the stored conditions.
func (s *PolicyAPIService) putToken(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("videoID")

	var body tokenBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TokenID == "" {
		writeErr(w, http.StatusBadRequest, "Token ID is required")
		return
	}

	err := s.store.SetTokenID(r.Context(), videoID, body.TokenID)
	if errors.Is(err, types.ErrPolicyNotFound) {
		writeErr(w, http.StatusNotFound, "Policy not found")
		return
	}
	if err != nil {
		log.Printf("set token id for video %s: %v", videoID, err)
		writeErr(w, http.StatusInternalServerError, "Failed to update policy")
		return
	}

	s.invalidate(r, videoID)
	w.WriteHeader(http.StatusNoContent)
}

// invalidate drops any cached policy record after a write. Cache failures
// only get logged; the database already holds the new state.
func (s *PolicyAPIService) invalidate(r *http.Request, videoID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePolicy(r.Context(), videoID); err != nil {
		log.Printf("invalidate cached policy for video %s: %v", videoID, err)
	}
}
