package auth

import (
	"net/http"
	"strings"

	"github.com/frahmantamala/projecthub/internal"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/frahmantamala/projecthub/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout only verifies the token; tokens are stateless and expire on their own.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.HandleServiceError(w, internal.ErrInvalidToken.WithMessage("missing authorization token"))
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware requires a bearer token in the Authorization header.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return h.authenticate(false)(next)
}

// WebsocketAuthMiddleware also accepts the token as a `token` query parameter, since
// browsers cannot set headers on websocket upgrades.
func (h *Handler) WebsocketAuthMiddleware(next http.Handler) http.Handler {
	return h.authenticate(true)(next)
}

func (h *Handler) authenticate(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := h.ExtractTokenFromHeader(r)
			if token == "" && allowQuery {
				token = strings.TrimSpace(r.URL.Query().Get("token"))
			}
			if token == "" {
				h.HandleServiceError(w, internal.ErrInvalidToken.WithMessage("missing authorization token"))
				return
			}

			claims, err := h.Service.ValidateAccessToken(token)
			if err != nil {
				h.HandleServiceError(w, err)
				return
			}

			uid, err := UserIDFromClaims(claims)
			if err != nil {
				h.HandleServiceError(w, err)
				return
			}

			user, err := h.Service.GetUserWithPermissions(r.Context(), uid)
			if err != nil {
				h.Logger.Warn("auth middleware: failed to load user", "user_id", uid, "error", err)
				h.HandleServiceError(w, internal.ErrInvalidToken.WithMessage("user not found"))
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			ctx = logger.With(ctx, "user_id", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
