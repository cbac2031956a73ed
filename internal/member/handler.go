package member

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courtclub/internal/api"
	"courtclub/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to register"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Member:       m,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	m, accessToken, refreshToken, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
		case errors.Is(err, ErrInactive):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "member is deactivated"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to login"})
		}
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Member:       m,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	accessToken, m, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
		"member":       m,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "member not found"})
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), memberID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "current password is incorrect"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to change password"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "password changed"})
}

func (h *Handler) Deactivate(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid member id"})
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), memberID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to deactivate member"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "member deactivated"})
}
