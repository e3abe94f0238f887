package handlers

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.uber.org/zap"

	"github.com/ecomarket/ecomarket-api/internal/middleware"
	"github.com/ecomarket/ecomarket-api/internal/service"
	"github.com/ecomarket/ecomarket-api/internal/utils"
)

type AuthHandler struct {
	svc            *service.AuthService
	minPasswordLen int
	logger         *zap.Logger
}

// ----------- Request DTOs -------------

type signupReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r signupReq) Validate(minPasswordLen int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLen, 128)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
	)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginReq) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type updateProfileReq struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func (r updateProfileReq) Validate(minPasswordLen int) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.Length(minPasswordLen, 128)),
		validation.Field(&r.FirstName, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Length(1, 50)),
	)
}

// -------------- SIGN UP ----------------------

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := req.Validate(h.minPasswordLen); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Signup(r.Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusCreated, result)
}

// -------------- LOGIN ------------------------

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := req.Validate(); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, result)
}

// -------------- PROFILE (protected) -----------

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	user, err := h.svc.Profile(r.Context(), id.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var req updateProfileReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := req.Validate(h.minPasswordLen); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), id.ID, service.UpdateProfileInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	utils.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	if err := h.svc.DeactivateProfile(r.Context(), id.ID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
