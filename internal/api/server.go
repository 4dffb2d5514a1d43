// Package api exposes the vault and stake operations over HTTP. It is a
// thin layer: request decoding, capability-token extraction and error
// envelope encoding; all semantics live in the services package.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vaultpoint/staking-vault/internal/config"
	"github.com/vaultpoint/staking-vault/internal/db/model"
	"github.com/vaultpoint/staking-vault/internal/observability/metrics"
	"github.com/vaultpoint/staking-vault/internal/observability/tracing"
	"github.com/vaultpoint/staking-vault/internal/services"
	"github.com/vaultpoint/staking-vault/internal/types"
)

// vaultService is the slice of the service layer the API needs.
type vaultService interface {
	CreateVault(ctx context.Context, capabilityToken, assetType, creator string) (*model.VaultDocument, *types.Error)
	Deposit(ctx context.Context, vaultID string, amount uint64, depositor string) *types.Error
	Withdraw(ctx context.Context, vaultID string, amount uint64, by, recipient string) *types.Error
	GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, *types.Error)
	DestroyVault(ctx context.Context, capabilityToken, vaultID, by string) *types.Error

	OpenStake(ctx context.Context, vaultID string, principal uint64, owner string) (*model.StakeDocument, *types.Error)
	SettleStake(ctx context.Context, stakeID string) (*services.SettlementResult, *types.Error)
	CloseStake(ctx context.Context, stakeID, recipient string) (*model.StakeDocument, *types.Error)
	GetStake(ctx context.Context, stakeID string) (*model.StakeDocument, *types.Error)
	ProjectPoints(ctx context.Context, stakeID string) (*services.PointsProjection, *types.Error)

	GetRateConfig(ctx context.Context) (*model.RateConfigDocument, *types.Error)
	SetRate(ctx context.Context, capabilityToken string, newAPYBasisPoints uint64) *types.Error
}

type Server struct {
	cfg     *config.APIConfig
	service vaultService
}

func NewServer(cfg *config.APIConfig, service vaultService) *Server {
	return &Server{
		cfg:     cfg,
		service: service,
	}
}

// Start runs the HTTP server until it fails or the process exits.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		WriteTimeout: s.cfg.WriteTimeout,
		ReadTimeout:  s.cfg.ReadTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	log.Info().Msgf("Starting API server on %s", addr)
	return server.ListenAndServe()
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/vaults", s.handleCreateVault)
		r.Get("/vaults/{vaultID}", s.handleGetVault)
		r.Post("/vaults/{vaultID}/deposit", s.handleDeposit)
		r.Post("/vaults/{vaultID}/withdraw", s.handleWithdraw)
		r.Delete("/vaults/{vaultID}", s.handleDestroyVault)

		r.Post("/stakes", s.handleOpenStake)
		r.Get("/stakes/{stakeID}", s.handleGetStake)
		r.Post("/stakes/{stakeID}/settle", s.handleSettleStake)
		r.Post("/stakes/{stakeID}/close", s.handleCloseStake)
		r.Get("/stakes/{stakeID}/points", s.handleProjectPoints)

		r.Get("/rate", s.handleGetRate)
		r.Put("/rate", s.handleSetRate)
	})

	return r
}

// requestLogger injects a trace ID and records per-request metrics.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.InjectTraceID(r.Context(), r.Header.Get("X-Request-Id"))
		start := time.Now()

		ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, r.URL.Path, ww.status, duration)
		log.Ctx(ctx).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", duration).
			Msg("Request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
