package tournament

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courtclub/internal/api"
	"courtclub/internal/auth"
	"courtclub/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create is admin-only, enforced by route middleware.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	t, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create tournament"})
		return
	}

	c.JSON(http.StatusCreated, t)
}

func (h *Handler) Join(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	tournamentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid tournament id"})
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.service.Join(c.Request.Context(), memberID, tournamentID, req)
	if err != nil {
		respondTournamentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c *gin.Context) {
	tournamentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid tournament id"})
		return
	}

	t, err := h.service.Get(c.Request.Context(), tournamentID)
	if err != nil {
		respondTournamentError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

func (h *Handler) List(c *gin.Context) {
	tournaments, err := h.service.List(c.Request.Context(), Status(c.Query("status")))
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list tournaments"})
		return
	}

	c.JSON(http.StatusOK, tournaments)
}

func (h *Handler) Participants(c *gin.Context) {
	tournamentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid tournament id"})
		return
	}

	participants, err := h.service.Participants(c.Request.Context(), tournamentID)
	if err != nil {
		respondTournamentError(c, err)
		return
	}

	c.JSON(http.StatusOK, participants)
}

// UpdateStatus is admin-only, enforced by route middleware.
func (h *Handler) UpdateStatus(c *gin.Context) {
	tournamentID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid tournament id"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), tournamentID, req.Status); err != nil {
		respondTournamentError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "tournament status updated"})
}

func respondTournamentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotOpen), errors.Is(err, ErrAlreadyJoined), errors.Is(err, ErrFull):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, wallet.ErrMemberInactive):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}
