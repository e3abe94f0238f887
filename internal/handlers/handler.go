package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ecomarket/ecomarket-api/internal/service"
	"github.com/ecomarket/ecomarket-api/internal/utils"
)

type Handler struct {
	Auth   *AuthHandler
	Admin  *AdminHandler
	Seller *SellerHandler
}

func NewHandler(auth *service.AuthService, admin *service.AdminService, minPasswordLen int, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:   &AuthHandler{svc: auth, minPasswordLen: minPasswordLen, logger: logger},
		Admin:  &AdminHandler{svc: admin, minPasswordLen: minPasswordLen, logger: logger},
		Seller: &SellerHandler{svc: auth},
	}
}

// writeServiceError maps the service error taxonomy onto stable responses.
// Anything unrecognized becomes a 500 with a generic message; the detail
// only goes to the log.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		utils.JSONError(w, http.StatusConflict, service.ErrEmailTaken.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		utils.JSONError(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrUserNotFound):
		utils.JSONError(w, http.StatusNotFound, service.ErrUserNotFound.Error())
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrNoChange):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
	}
}
