package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fleetguard360/busbooking/internal/auth"
	"github.com/fleetguard360/busbooking/internal/graphql"
	"github.com/fleetguard360/busbooking/internal/models"
)

type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "username and password are required",
			Code:    http.StatusBadRequest,
		})
	}

	sess, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.authError(c, err, "Login failed: ")
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	username := c.QueryParam("user")
	if username == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "user query parameter is required",
			Code:    http.StatusBadRequest,
		})
	}
	if err := h.service.Logout(c.Request().Context(), username); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "logout_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req auth.RegisterInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	}

	passenger, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return h.authError(c, err, "Registration failed: ")
	}
	return c.JSON(http.StatusCreated, passenger)
}

func (h *AuthHandler) authError(c echo.Context, err error, prefix string) error {
	var rejected *auth.AuthError
	if errors.As(err, &rejected) {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "auth_rejected",
			Message: rejected.Message,
			Code:    http.StatusUnauthorized,
		})
	}
	var query *graphql.QueryError
	if errors.As(err, &query) {
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "auth_error",
			Message: prefix + query.Message,
			Code:    http.StatusBadGateway,
		})
	}
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "auth_error",
		Message: prefix + err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
