package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/spamscope/auth"
	"github.com/jrsteele09/spamscope/graph"
	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps an error to the HTTP status returned to the host.
func StatusFor(err error) int {
	var remote *graph.RemoteError
	switch {
	case errs.Is(err, auth.ErrLoginInProgress):
		return http.StatusConflict
	case errs.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errs.As(err, &remote):
		switch remote.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return http.StatusUnauthorized
		case http.StatusNotFound:
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}

	switch errs.Kind(err) {
	case errs.ErrInvalidArgument:
		return http.StatusBadRequest
	case errs.ErrConfig:
		return http.StatusInternalServerError
	case errs.ErrAuthRejected:
		return http.StatusUnauthorized
	case errs.ErrNotFound:
		return http.StatusNotFound
	case errs.ErrNetwork, errs.ErrProtocol, errs.ErrDecode, errs.ErrRemote:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	zerolog.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("request failed")
	writeJSONError(w, err.Error(), status)
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
