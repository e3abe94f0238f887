package handlers

import (
	"net/http"
	"time"

	"github.com/ecomarket/ecomarket-api/internal/middleware"
	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/service"
	"github.com/ecomarket/ecomarket-api/internal/utils"
)

// SellerHandler backs the seller area, open to SELLER and ADMIN roles.
type SellerHandler struct {
	svc *service.AuthService
}

type sellerOverview struct {
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	MemberSince time.Time   `json:"memberSince"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
}

// Overview returns the calling seller's account summary.
func (h *SellerHandler) Overview(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	user, err := h.svc.Profile(r.Context(), id.ID)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	utils.JSON(w, http.StatusOK, sellerOverview{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		MemberSince: user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	})
}
