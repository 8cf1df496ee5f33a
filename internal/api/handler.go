package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"alumni-match/internal/common/errors"
	"alumni-match/internal/match"
	"alumni-match/internal/pipeline"
)

const maxBodyBytes = 64 << 10

// matchRequest is the inbound body for POST /api/match.
type matchRequest struct {
	Options match.Options `json:"options"`
}

type matchResponse struct {
	Results []match.Result `json:"results"`
}

type errorResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or malformed Authorization header", 0)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body", 0)
		return
	}

	var req matchRequest
	if len(body) > 0 {
		if verr := validateMatchRequest(body); verr != "" {
			writeError(w, http.StatusBadRequest, verr, 0)
			return
		}
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body", 0)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	resp, err := s.pipeline.Execute(ctx, pipeline.Request{
		Token:        token,
		RemoteAddr:   r.RemoteAddr,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		Options:      req.Options,
	})
	if err != nil {
		pipeErr := errors.Normalize(err)
		status := pipeErr.HTTPStatus()
		msg := pipeErr.Message
		if status == http.StatusInternalServerError {
			// Internal details stay in logs, not responses.
			s.logger.Error("matching request failed", map[string]interface{}{
				"code":      string(pipeErr.Code),
				"details":   pipeErr.Details,
				"requestId": requestIDFrom(r.Context()),
			})
			msg = "internal server error"
		}
		if pipeErr.Code == errors.ErrCodeRateLimited {
			w.Header().Set("Retry-After", strconv.Itoa(pipeErr.RetryAfterSeconds))
		}
		writeError(w, status, msg, pipeErr.RetryAfterSeconds)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse{Results: resp.Results})
}

// bearerToken extracts the token from a strict "Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, retryAfter int) {
	writeJSON(w, status, errorResponse{Error: msg, RetryAfterSeconds: retryAfter})
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
