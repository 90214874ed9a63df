package http

import (
	"context"
	"net/http"
	"time"

	"github.com/AlibekovAA/authd/internal/auth/service"
	commonhttp "github.com/AlibekovAA/authd/internal/common/http"
	"github.com/AlibekovAA/authd/internal/common/jwtverify"
	"github.com/AlibekovAA/authd/internal/common/logger"
	userdomain "github.com/AlibekovAA/authd/internal/user/domain"
)

type Credentials interface {
	Register(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, username, password string) (userdomain.Identity, error)
}

type Tokens interface {
	Issue(subjectID, subjectUsername string) (string, error)
	Verify(token string) (jwtverify.Claims, error)
}

// Fields are decoded loosely so that a number or object in place of a
// string is reported as invalid input, not invalid JSON.
type credentialsRequest struct {
	Username any `json:"username"`
	Password any `json:"password"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type loginResponse struct {
	User  userdomain.Identity `json:"user"`
	Token string              `json:"token"`
}

type Handler struct {
	credentials Credentials
	tokens      Tokens
	log         *logger.Logger
}

func NewHandler(credentials Credentials, tokens Tokens, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{credentials: credentials, tokens: tokens, log: log}

	post := func(fn http.HandlerFunc) http.HandlerFunc {
		return commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(fn))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler())
	mux.HandleFunc("/api/auth/register", post(h.register))
	mux.HandleFunc("/api/auth/login", post(h.login))
	mux.Handle("/api/auth/me", commonhttp.RequireMethod(http.MethodGet)(
		jwtverify.Middleware(tokens.Verify, log)(http.HandlerFunc(h.me)).ServeHTTP,
	))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound, "not found", nil, commonhttp.TraceIDFromContext(r.Context()))
	})
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	username, password, err := h.decodeCredentials(r)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	id, err := h.credentials.Register(r.Context(), username, password)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{ID: id})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username, password, err := h.decodeCredentials(r)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	identity, err := h.credentials.Authenticate(r.Context(), username, password)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	token, err := h.tokens.Issue(string(identity.ID), identity.Username)
	if err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"user_id": string(identity.ID),
			"action":  "token_issue_failed",
		}).Errorf("login failed: token issue error: %v", err)
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, loginResponse{User: identity, Token: token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.HandleError(w, r, commonhttp.ErrMissingAuthorization, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, userdomain.Identity{
		ID:       userdomain.ID(claims.UserID),
		Username: claims.Username,
	})
}

func (h *Handler) decodeCredentials(r *http.Request) (string, string, error) {
	var req credentialsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"path":   r.URL.Path,
			"action": "decode_failed",
		}).Warnf("request rejected: %v", err)
		return "", "", err
	}

	username, err := service.CredentialFromInput("username", req.Username)
	if err != nil {
		return "", "", err
	}
	if err := service.ValidateUsername(username); err != nil {
		return "", "", err
	}
	password, err := service.CredentialFromInput("password", req.Password)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}
