package userstore

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/helixkit/userstore/internal"
	"github.com/helixkit/userstore/internal/transport"
	"github.com/helixkit/userstore/pkg/logger"
)

// TokenIssuer is the auth collaborator the login endpoints call into.
// Token internals are opaque to this package.
type TokenIssuer interface {
	IssueTokens(login string, userUUID, personUUID uuid.UUID) (access, refresh string, err error)
	RefreshTokens(refreshToken string) (access, refresh string, err error)
	ValidateAccessToken(token string) error
}

// TokenPair is the login/refresh response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Tokens  TokenIssuer
}

func NewHandler(svc ServiceAPI, tokens TokenIssuer) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Tokens:      tokens,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	user, err := h.Service.Login(r.Context(), dto.Login, dto.Password)
	if err != nil {
		h.WriteAppError(w, internal.ErrInvalidCredentials)
		return
	}

	access, refresh, err := h.Tokens.IssueTokens(user.Login, user.UUID, user.Person.UUID)
	if err != nil {
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
		return
	}

	h.WriteJSON(w, http.StatusOK, TokenPair{AccessToken: access, RefreshToken: refresh})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	access, refresh, err := h.Tokens.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}

	h.WriteJSON(w, http.StatusOK, TokenPair{AccessToken: access, RefreshToken: refresh})
}

// AuthMiddleware rejects requests without a valid access token. No
// permission model here: token validity is the only gate.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}
		if err := h.Tokens.ValidateAccessToken(token); err != nil {
			h.WriteAppError(w, internal.ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) GetAllPersons(w http.ResponseWriter, r *http.Request) {
	persons, err := h.Service.GetAllPersons(r.Context())
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, persons)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r)
	if !ok {
		return
	}

	person, err := h.Service.GetPerson(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if person == nil {
		h.WriteAppError(w, internal.ErrPersonNotFound)
		return
	}
	h.WriteJSON(w, http.StatusOK, person)
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var person Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	if err := person.Validate(); err != nil {
		h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	created, err := h.Service.CreatePerson(r.Context(), person)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	var person Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	if err := person.Validate(); err != nil {
		h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	updated, err := h.Service.UpdatePerson(r.Context(), person)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, updated)
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r)
	if !ok {
		return
	}

	person, err := h.Service.GetPerson(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if person == nil {
		h.WriteAppError(w, internal.ErrPersonNotFound)
		return
	}

	if err := h.Service.DeletePerson(r.Context(), *person); err != nil {
		h.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r)
	if !ok {
		return
	}

	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if user == nil {
		h.WriteAppError(w, internal.ErrUserNotFound)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user AppUser
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}
	if err := user.ValidateForCreate(); err != nil {
		h.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
		return
	}

	created, err := h.Service.CreateUser(r.Context(), user)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var user AppUser
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	updated, err := h.Service.UpdateUser(r.Context(), user)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, updated)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uuidParam(w, r)
	if !ok {
		return
	}

	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}
	if user == nil {
		h.WriteAppError(w, internal.ErrUserNotFound)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), *user); err != nil {
		h.writeStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) uuidParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid uuid", internal.ErrCodeValidationFailed))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrConstraintViolation):
		h.WriteAppError(w, internal.NewConflictError("constraint violation", internal.ErrCodeConstraintViolation).WithCause(err))
	case errors.Is(err, ErrStorageUnavailable):
		h.WriteAppError(w, internal.NewUnavailableError("storage unavailable", err))
	case errors.Is(err, ErrNotImplemented):
		h.WriteAppError(w, internal.NewNotImplementedError("not implemented"))
	default:
		h.WriteAppError(w, internal.NewInternalError("internal server error", err))
	}
}
