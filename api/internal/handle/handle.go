package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"persona-selfie/api/internal/selfie"

	"go.uber.org/zap"
)

// Generator: то, что нужно хендлерам от selfie.Service.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, req selfie.Request) (*selfie.Result, error)
}

type Handle struct {
	gen Generator
	log *zap.Logger
}

func New(gen Generator, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		gen: gen,
		log: log,
	}
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Status: "error", Message: msg})
}
