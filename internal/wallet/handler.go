package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courtclub/internal/api"
	"courtclub/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type DepositRequest struct {
	Amount      int64  `json:"amount" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) GetBalance(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	balance, err := h.service.Balance(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load balance"})
		return
	}

	c.JSON(http.StatusOK, api.BalanceResponse{Balance: balance})
}

func (h *Handler) Deposit(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "amount is required"})
		return
	}

	entry, balance, err := h.service.Deposit(c.Request.Context(), memberID, req.Amount, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "amount must be positive"})
		case errors.Is(err, ErrMemberInactive), errors.Is(err, ErrMemberNotFound):
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not active"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to deposit"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction": entry,
		"balance":     balance,
	})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.service.Transactions(c.Request.Context(), memberID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

func (h *Handler) ListAllTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))

	txs, err := h.service.AllTransactions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}
