package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/riverplate/ferryfare-provider/internal/domain/models"
	"github.com/riverplate/ferryfare-provider/internal/domain/ports"
	"go.uber.org/zap"
)

type CredentialInspector interface {
	CredentialStatus(ctx context.Context, market models.MarketCode) (ports.CredentialStatus, error)
}

type CredentialsHandler struct {
	log     *zap.Logger
	service CredentialInspector
}

func NewCredentialsHandler(log *zap.Logger, service CredentialInspector) *CredentialsHandler {
	return &CredentialsHandler{log: log, service: service}
}

type credentialStatusResponse struct {
	Market    string `json:"market"`
	Present   bool   `json:"present"`
	Valid     bool   `json:"valid"`
	Token     string `json:"token,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func (h *CredentialsHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	market, ok := parseCredentialMarketFromPath(r.URL.Path)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid path, expected /v1/credentials/{market}")
		return
	}

	status, err := h.service.CredentialStatus(r.Context(), market)
	if err != nil {
		h.log.Warn("credential status failed", zap.Error(err))
		writeError(w, mapHTTPStatus(err), mapErrorMessage(err))
		return
	}

	resp := credentialStatusResponse{
		Market:  string(market),
		Present: status.Present,
		Valid:   status.Valid,
		Token:   status.Masked,
	}
	if !status.ExpiresAt.IsZero() {
		resp.ExpiresAt = status.ExpiresAt.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseCredentialMarketFromPath(path string) (models.MarketCode, bool) {
	const prefix = "/v1/credentials/"
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}

	part := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if part == "" || strings.Contains(part, "/") {
		return "", false
	}

	return models.ParseMarketCode(part)
}
