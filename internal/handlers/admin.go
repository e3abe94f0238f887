package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.uber.org/zap"

	"github.com/ecomarket/ecomarket-api/internal/models"
	"github.com/ecomarket/ecomarket-api/internal/service"
	"github.com/ecomarket/ecomarket-api/internal/store"
	"github.com/ecomarket/ecomarket-api/internal/utils"
)

type AdminHandler struct {
	svc            *service.AdminService
	minPasswordLen int
	logger         *zap.Logger
}

type updateRoleReq struct {
	Role models.Role `json:"role"`
}

type updateStatusReq struct {
	IsActive *bool `json:"isActive"`
}

type createUserReq struct {
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      models.Role `json:"role"`
}

func (r createUserReq) Validate(minPasswordLen int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLen, 128)),
		validation.Field(&r.FirstName, validation.Length(0, 50)),
		validation.Field(&r.LastName, validation.Length(0, 50)),
		validation.Field(&r.Role, validation.Required),
	)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	role := models.Role(q.Get("role"))

	pageResult, err := h.svc.ListUsers(r.Context(), store.ListFilter{
		Page:  page,
		Limit: limit,
		Role:  role,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, pageResult)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		utils.JSONError(w, http.StatusBadRequest, "q is required")
		return
	}

	users, err := h.svc.SearchUsers(r.Context(), query)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req updateRoleReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.svc.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req updateStatusReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}
	if req.IsActive == nil {
		utils.JSONError(w, http.StatusBadRequest, "isActive is required")
		return
	}

	user, err := h.svc.UpdateStatus(r.Context(), id, *req.IsActive)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := req.Validate(h.minPasswordLen); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.CreateUser(r.Context(), service.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusCreated, user)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		utils.JSONError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
