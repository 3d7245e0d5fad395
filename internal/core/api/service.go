// Package api provides the HTTP policy API for video access control.
package api

import (
	"fmt"
	"net/http"

	"github.com/loop/accessctl/internal/core/cache"
	"github.com/loop/accessctl/internal/core/config"
	"github.com/loop/accessctl/internal/core/db"
	"github.com/loop/accessctl/internal/litwire"
)

// PolicyAPIService implements the policy endpoints. Thin orchestration
// layer delegating to the rules, litwire, unlock, and db packages.
type PolicyAPIService struct {
	store *db.Store
	cache *cache.Client
	cfg   *config.PolicyAPIConfig
	conv  litwire.Converter
}

// NewPolicyAPIService creates a service instance with dependencies.
// The cache client is optional; pass nil to run without Redis.
func NewPolicyAPIService(store *db.Store, cacheClient *cache.Client, cfg *config.PolicyAPIConfig) (*PolicyAPIService, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}

	return &PolicyAPIService{
		store: store,
		cache: cacheClient,
		cfg:   cfg,
		conv: litwire.Converter{
			Chain:           cfg.ChainID(),
			PurchaseManager: cfg.Contracts.PurchaseManager,
			ActionCID:       cfg.ActionCID,
		},
	}, nil
}

// Routes returns the service mux with CORS applied to every route.
func (s *PolicyAPIService) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /videos/{videoID}/policy", s.putPolicy)
	mux.HandleFunc("GET /videos/{videoID}/policy", s.getPolicy)
	mux.HandleFunc("GET /videos/{videoID}/unlock-options", s.getUnlockOptions)
	mux.HandleFunc("POST /videos/{videoID}/template", s.postTemplate)
	mux.HandleFunc("PUT /videos/{videoID}/token", s.putToken)
	mux.HandleFunc("GET /videos/{videoID}/playback-conditions", s.getPlaybackConditions)
	mux.HandleFunc("POST /videos/{videoID}/access", s.postAccessGrant)
	mux.HandleFunc("GET /videos/{videoID}/access/{address}", s.getAccess)
	return corsMiddleware(mux)
}

// corsMiddleware allows browser calls from the webapp origin. Preflight
// requests are answered without reaching the handlers.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
