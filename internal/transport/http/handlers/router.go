package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// Register wires every public route onto the mux.
func Register(mux *http.ServeMux, log *zap.Logger, fares *FaresHandler, credentials *CredentialsHandler) {
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/v1/fares", fares.Fares)
	mux.HandleFunc("/v1/fares/raw", fares.RawBundle)
	mux.HandleFunc("/v1/fares/tariffs", fares.Tariffs)
	mux.HandleFunc("/v1/credentials/", credentials.Status)

	log.Info("http routes registered")
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
