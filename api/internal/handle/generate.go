package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"persona-selfie/api/internal/scene"
	"persona-selfie/api/internal/selfie"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type GenerateRequest struct {
	BotID                *string `json:"bot_id"`
	Message              *string `json:"message"`
	Email                *string `json:"email"`
	PreviousConversation *string `json:"previous_conversation"`
	Username             *string `json:"username"`
}

type GenerateResponse struct {
	BotID          string        `json:"bot_id"`
	ImageURL       string        `json:"image_url"`
	ImageBase64    string        `json:"image_base64"`
	Status         string        `json:"status"`
	EmotionContext scene.Context `json:"emotion_context"`
}

// toRequest проверяет обязательные поля и подставляет значения по умолчанию.
func (g GenerateRequest) toRequest() (selfie.Request, error) {
	var missing []string
	if g.BotID == nil {
		missing = append(missing, "bot_id")
	}
	if g.Message == nil {
		missing = append(missing, "message")
	}
	if g.Email == nil {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return selfie.Request{}, errors.New("missing required field(s): " + strings.Join(missing, ", "))
	}
	req := selfie.Request{
		BotID:    *g.BotID,
		Message:  *g.Message,
		Email:    *g.Email,
		Username: scene.DefaultUsername,
	}
	if g.PreviousConversation != nil {
		req.PreviousConversation = *g.PreviousConversation
	}
	if g.Username != nil {
		req.Username = *g.Username
	}
	return req, nil
}

// GenerateImage: POST /v1/generate_image.
func (h *Handle) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	// недоступный backend: 503 при любом теле запроса
	if !h.gen.Available() {
		writeError(w, http.StatusServiceUnavailable, selfie.UnavailableMessage)
		return
	}

	var body GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		code := statusFor(err)
		log := h.log.With(zap.String("bot_id", req.BotID), zap.Int("status", code), zap.Error(err))
		if code >= http.StatusInternalServerError {
			log.Error("generate image failed")
		} else {
			log.Info("generate image rejected")
		}
		writeError(w, code, selfie.MessageOf(err))
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		BotID:          res.BotID,
		ImageURL:       origin(r) + res.Path,
		ImageBase64:    res.Base64,
		Status:         "success",
		EmotionContext: res.Context,
	})
}

func statusFor(err error) int {
	switch selfie.KindOf(err) {
	case selfie.KindNotFound:
		return http.StatusNotFound
	case selfie.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// origin: scheme://host, как его видит клиент.
func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		p, _, _ = strings.Cut(p, ",")
		if p = strings.ToLower(strings.TrimSpace(p)); p == "http" || p == "https" {
			scheme = p
		}
	}
	return scheme + "://" + r.Host
}
