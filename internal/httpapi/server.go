package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/clock"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/service"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/store"
	"github.com/gatewarden-labs/gatewarden/internal/gatewarden/types"
	"github.com/gatewarden-labs/gatewarden/internal/logging"
)

type Dependencies struct {
	Logger      logging.Logger
	Addr        string
	Validator   *service.AccessValidator
	Issuer      *service.PasscodeIssuer
	Credentials store.CredentialStore
	Clock       clock.Clock
	JWTSecret   []byte
}

type Server struct {
	httpServer  *http.Server
	logger      logging.Logger
	mux         *http.ServeMux
	validator   *service.AccessValidator
	issuer      *service.PasscodeIssuer
	credentials store.CredentialStore
	clk         clock.Clock
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:      d.Logger,
		mux:         mux,
		validator:   d.Validator,
		issuer:      d.Issuer,
		credentials: d.Credentials,
		clk:         d.Clock,
	}

	// Device-facing validation surface.  No auth: entry devices speak
	// plain JSON and the credential itself is the secret.
	mux.HandleFunc("POST /access/validate", s.handleValidateCode)
	mux.HandleFunc("POST /access/validate/qr", s.handleValidateQR)
	mux.HandleFunc("POST /access/validate/window", s.handleValidateWindow)

	// Operator surface, bearer-token guarded.
	mux.HandleFunc("POST /v1/credentials", requireBearer(d.JWTSecret, s.handleIssuePasscode))
	mux.HandleFunc("POST /v1/credentials/qr", requireBearer(d.JWTSecret, s.handleIssueQR))
	mux.HandleFunc("POST /v1/credentials/{code}/revoke", requireBearer(d.JWTSecret, s.handleRevoke))

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// validDirection admits the two travel directions plus empty, which is
// recorded as unspecified.
func validDirection(d string) bool {
	return d == "" || d == "in" || d == "out"
}

func (s *Server) handleValidateCode(w http.ResponseWriter, r *http.Request) {
	var req types.ValidateCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_device_id", "deviceId is required")
		return
	}
	if !validDirection(req.Direction) {
		writeError(w, http.StatusBadRequest, "invalid_direction", "unrecognized direction")
		return
	}

	res, err := s.validator.ValidateCode(r.Context(), req)
	if err != nil {
		s.logger.Error(r.Context(), "validate code failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	// Denial is a 200: the request was well-formed and was answered.
	writeJSON(w, http.StatusOK, types.ValidateResponse{Success: res.Success, Message: res.Message})
}

func (s *Server) handleValidateQR(w http.ResponseWriter, r *http.Request) {
	var req types.ValidateQRRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_device_id", "deviceId is required")
		return
	}
	if !validDirection(req.Direction) {
		writeError(w, http.StatusBadRequest, "invalid_direction", "unrecognized direction")
		return
	}

	res, err := s.validator.ValidateQR(r.Context(), req)
	if err != nil {
		s.logger.Error(r.Context(), "validate qr failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.ValidateResponse{Success: res.Success, Message: res.Message})
}

func (s *Server) handleValidateWindow(w http.ResponseWriter, r *http.Request) {
	var req types.ValidateWindowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_device_id", "deviceId is required")
		return
	}

	res, err := s.validator.ValidateWindowCode(r.Context(), req)
	if err != nil {
		s.logger.Error(r.Context(), "validate window code failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.ValidateResponse{Success: res.Success, Message: res.Message})
}

func (s *Server) handleIssuePasscode(w http.ResponseWriter, r *http.Request) {
	var req types.IssuePasscodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	opts := service.IssueOptions{UsageLimit: req.UsageLimit}
	if req.TTLMinutes != nil {
		ttl := time.Duration(*req.TTLMinutes) * time.Minute
		opts.TTL = &ttl
	}

	p, err := s.issuer.Generate(r.Context(), req.OwnerID, types.OwnerType(req.OwnerType), opts)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOwner):
			writeError(w, http.StatusBadRequest, "invalid_owner", err.Error())
		case errors.Is(err, service.ErrInvalidPolicy):
			writeError(w, http.StatusBadRequest, "invalid_policy", err.Error())
		case errors.Is(err, service.ErrCodeSpaceBusy):
			writeError(w, http.StatusConflict, "code_space_busy", err.Error())
		default:
			s.logger.Error(r.Context(), "issue passcode failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	resp := types.IssuePasscodeResponse{
		Code:      p.Code,
		OwnerID:   p.OwnerID,
		OwnerType: string(p.OwnerType),
	}
	if p.ExpiresAt != nil {
		resp.ExpiresAt = p.ExpiresAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleIssueQR(w http.ResponseWriter, r *http.Request) {
	var req types.IssueQRRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TTLMinutes <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_ttl", "ttl_minutes must be positive")
		return
	}

	ttl := time.Duration(req.TTLMinutes) * time.Minute
	token, payload, err := s.issuer.IssueQR(r.Context(), req.OwnerID, types.OwnerType(req.OwnerType), req.Permissions, ttl)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOwner):
			writeError(w, http.StatusBadRequest, "invalid_owner", err.Error())
		case errors.Is(err, service.ErrNoPermissions):
			writeError(w, http.StatusBadRequest, "invalid_permissions", err.Error())
		default:
			s.logger.Error(r.Context(), "issue qr failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, types.IssueQRResponse{
		Token:     token,
		ExpiresAt: payload.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if strings.TrimSpace(code) == "" {
		writeError(w, http.StatusBadRequest, "invalid_code", "code is required")
		return
	}

	err := s.credentials.RevokePasscode(r.Context(), code, s.clk.Now())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "no such credential")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "revoke failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.RevokeResponse{Code: code, Revoked: true})
}
