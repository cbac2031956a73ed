package court

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"courtclub/internal/api"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListCourts(c *gin.Context) {
	courts, err := h.repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load courts"})
		return
	}
	c.JSON(http.StatusOK, courts)
}

func (h *Handler) GetCourt(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("courtID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid court id"})
		return
	}

	crt, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "court not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load court"})
		return
	}

	c.JSON(http.StatusOK, crt)
}

func (h *Handler) CreateCourt(c *gin.Context) {
	var req CreateCourtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	crt, err := h.repo.Create(c.Request.Context(), req.Name, req.Description, req.PricePerHour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create court"})
		return
	}

	c.JSON(http.StatusCreated, crt)
}
