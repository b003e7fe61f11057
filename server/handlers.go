package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	errs "github.com/jrsteele09/spamscope/internal/errors"
	"github.com/jrsteele09/spamscope/mailbox"
	"github.com/jrsteele09/spamscope/oauthmodel"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 64 << 10
)

// LoginRequest is the body of POST /api/login. An empty client id falls back to the configured one.
type LoginRequest struct {
	ClientID string `json:"client_id"`
}

// IMAPRequest is the body of the IMAP routes.
type IMAPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Server   string `json:"server"`
	Port     int    `json:"port"`
}

func (r IMAPRequest) credentials() mailbox.Credentials {
	return mailbox.Credentials{
		Email:    r.Email,
		Password: r.Password,
		Server:   r.Server,
		Port:     r.Port,
	}
}

type authURLResponse struct {
	URL string `json:"url"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// LoginHandler runs the interactive login and answers with the access token
// once the redirect has been captured.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeBody(r, &req, true); err != nil {
			s.writeError(w, r, err)
			return
		}
		clientID := req.ClientID
		if clientID == "" {
			clientID = s.config.GetClientID()
		}

		accessToken, err := s.commands.Login(r.Context(), clientID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, oauthmodel.NewBearerResponse(accessToken))
	}
}

// OAuthURLHandler returns the authorization URL of the running login, for
// hosts that open it themselves.
func (s *Server) OAuthURLHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, ok := "", false
		if s.authURLs != nil {
			authURL, ok = s.authURLs.LastAuthURL()
		}
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, authURLResponse{URL: authURL})
	}
}

func (s *Server) SpamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := limitParam(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		emails, err := s.commands.GetSpamDomains(r.Context(), accessTokenFrom(r.Context()), limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emails)
	}
}

func (s *Server) SpamReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := limitParam(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		report, err := s.commands.GetDomainReport(r.Context(), accessTokenFrom(r.Context()), limit)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.commands.GetUserInfo(r.Context(), accessTokenFrom(r.Context()))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) IMAPCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IMAPRequest
		if err := decodeBody(r, &req, false); err != nil {
			s.writeError(w, r, err)
			return
		}
		msg, err := s.commands.CheckIMAPLogin(r.Context(), req.credentials())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: msg})
	}
}

func (s *Server) IMAPSendersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IMAPRequest
		if err := decodeBody(r, &req, false); err != nil {
			s.writeError(w, r, err)
			return
		}
		senders, err := s.commands.GetIMAPJunkSenders(r.Context(), req.credentials())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, senders)
	}
}

func (s *Server) IMAPJunkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req IMAPRequest
		if err := decodeBody(r, &req, false); err != nil {
			s.writeError(w, r, err)
			return
		}
		emails, err := s.commands.GetIMAPJunkEmails(r.Context(), req.credentials())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, emails)
	}
}

// decodeBody reads a JSON body into v. An empty body is accepted when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: request body: %w", errs.ErrInvalidArgument, err)
	}
	return nil
}

func limitParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("%w: limit %q is not a non-negative integer", errs.ErrInvalidArgument, raw)
	}
	return limit, nil
}
