package challenge

import (
	"context"
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

func (h *Handler) Create(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), memberID, req)
	if err != nil {
		respondChallengeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) Accept(c *gin.Context) {
	h.transition(c, h.service.Accept)
}

func (h *Handler) Reject(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, memberID, challengeID int) (*Challenge, error)) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	challengeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid challenge id"})
		return
	}

	ch, err := fn(c.Request.Context(), memberID, challengeID)
	if err != nil {
		respondChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

func (h *Handler) Complete(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	challengeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid challenge id"})
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ch, err := h.service.Complete(c.Request.Context(), memberID, challengeID, req.ChallengerScore, req.OpponentScore)
	if err != nil {
		respondChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

func (h *Handler) Get(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	challengeID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid challenge id"})
		return
	}

	ch, err := h.service.Get(c.Request.Context(), memberID, challengeID)
	if err != nil {
		respondChallengeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ch)
}

func (h *Handler) ListMine(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	challenges, err := h.service.ListForMember(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list challenges"})
		return
	}

	c.JSON(http.StatusOK, challenges)
}

func (h *Handler) ListIncoming(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	challenges, err := h.service.ListIncoming(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list challenges"})
		return
	}

	c.JSON(http.StatusOK, challenges)
}

func respondChallengeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSelfChallenge), errors.Is(err, ErrInvalidWager), errors.Is(err, ErrOpponentInactive):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrOpponentNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrNotAccepted), errors.Is(err, ErrTiedScore):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrExpired):
		c.JSON(http.StatusGone, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, wallet.ErrMemberNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}
