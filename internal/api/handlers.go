package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vaultpoint/staking-vault/internal/types"
)

type errorResponse struct {
	ErrorCode types.ErrorCode `json:"errorCode"`
	Message   string          `json:"message"`
}

type createVaultRequest struct {
	AssetType string `json:"asset_type"`
	Creator   string `json:"creator"`
}

type depositRequest struct {
	Amount    uint64 `json:"amount"`
	Depositor string `json:"depositor"`
}

type withdrawRequest struct {
	Amount    uint64 `json:"amount"`
	By        string `json:"by"`
	Recipient string `json:"recipient"`
}

type destroyVaultRequest struct {
	By string `json:"by"`
}

type openStakeRequest struct {
	VaultID   string `json:"vault_id"`
	Principal uint64 `json:"principal"`
	Owner     string `json:"owner"`
}

type closeStakeRequest struct {
	Recipient string `json:"recipient"`
}

type setRateRequest struct {
	APYBasisPoints uint64 `json:"apy_basis_points"`
}

func (s *Server) handleCreateVault(w http.ResponseWriter, r *http.Request) {
	var req createVaultRequest
	if !decodeBody(w, r, &req) {
		return
	}

	vault, terr := s.service.CreateVault(r.Context(), bearerToken(r), req.AssetType, req.Creator)
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusCreated, vault)
}

func (s *Server) handleGetVault(w http.ResponseWriter, r *http.Request) {
	vault, terr := s.service.GetVault(r.Context(), chi.URLParam(r, "vaultID"))
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, vault)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if terr := s.service.Deposit(r.Context(), chi.URLParam(r, "vaultID"), req.Amount, req.Depositor); terr != nil {
		writeError(w, terr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if terr := s.service.Withdraw(r.Context(), chi.URLParam(r, "vaultID"), req.Amount, req.By, req.Recipient); terr != nil {
		writeError(w, terr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDestroyVault(w http.ResponseWriter, r *http.Request) {
	var req destroyVaultRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if terr := s.service.DestroyVault(r.Context(), bearerToken(r), chi.URLParam(r, "vaultID"), req.By); terr != nil {
		writeError(w, terr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenStake(w http.ResponseWriter, r *http.Request) {
	var req openStakeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	stake, terr := s.service.OpenStake(r.Context(), req.VaultID, req.Principal, req.Owner)
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusCreated, stake)
}

func (s *Server) handleGetStake(w http.ResponseWriter, r *http.Request) {
	stake, terr := s.service.GetStake(r.Context(), chi.URLParam(r, "stakeID"))
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, stake)
}

func (s *Server) handleSettleStake(w http.ResponseWriter, r *http.Request) {
	result, terr := s.service.SettleStake(r.Context(), chi.URLParam(r, "stakeID"))
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCloseStake(w http.ResponseWriter, r *http.Request) {
	var req closeStakeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	stake, terr := s.service.CloseStake(r.Context(), chi.URLParam(r, "stakeID"), req.Recipient)
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, stake)
}

func (s *Server) handleProjectPoints(w http.ResponseWriter, r *http.Request) {
	projection, terr := s.service.ProjectPoints(r.Context(), chi.URLParam(r, "stakeID"))
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, projection)
}

func (s *Server) handleGetRate(w http.ResponseWriter, r *http.Request) {
	rate, terr := s.service.GetRateConfig(r.Context())
	if terr != nil {
		writeError(w, terr)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if terr := s.service.SetRate(r.Context(), bearerToken(r), req.APYBasisPoints); terr != nil {
		writeError(w, terr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bearerToken extracts the capability token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return token
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, types.NewValidationFailedError(err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, terr *types.Error) {
	writeJSON(w, terr.StatusCode, errorResponse{
		ErrorCode: terr.ErrorCode,
		Message:   terr.Error(),
	})
}
