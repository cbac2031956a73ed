package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"courtclub/internal/api"
	"courtclub/internal/auth"
	"courtclub/internal/court"
	"courtclub/internal/wallet"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), memberID, req.CourtID, req.StartTime, req.EndTime)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// parseTimeOfDay reads "HH:MM" as an offset from midnight.
func parseTimeOfDay(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func (h *Handler) CreateRecurringBooking(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	var req CreateRecurringBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	fromDate, err := time.Parse("2006-01-02", req.FromDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from_date must be YYYY-MM-DD"})
		return
	}
	toDate, err := time.Parse("2006-01-02", req.ToDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to_date must be YYYY-MM-DD"})
		return
	}
	startOfDay, err := parseTimeOfDay(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "start_time must be HH:MM"})
		return
	}
	endOfDay, err := parseTimeOfDay(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "end_time must be HH:MM"})
		return
	}

	days := make([]time.Weekday, 0, len(req.DaysOfWeek))
	for _, d := range req.DaysOfWeek {
		if d < 0 || d > 6 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "days_of_week values must be 0-6"})
			return
		}
		days = append(days, time.Weekday(d))
	}

	bookings, totalPrice, err := h.service.CreateRecurringBooking(c.Request.Context(), memberID, RecurringRequest{
		CourtID:    req.CourtID,
		FromDate:   fromDate,
		ToDate:     toDate,
		StartOfDay: startOfDay,
		EndOfDay:   endOfDay,
		DaysOfWeek: days,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RecurringBookingResponse{
		Bookings:   bookings,
		TotalPrice: totalPrice,
	})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking id"})
		return
	}

	b, refund, err := h.service.CancelBooking(c.Request.Context(), memberID, bookingID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, CancelBookingResponse{
		Booking:      b,
		RefundAmount: refund,
	})
}

func (h *Handler) ListMyBookings(c *gin.Context) {
	memberID, ok := auth.GetMemberID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "member not authenticated"})
		return
	}

	bookings, err := h.service.MemberBookings(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) Calendar(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from must be RFC3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must be RFC3339"})
		return
	}

	bookings, err := h.service.Calendar(c.Request.Context(), from, to)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *Handler) ListAllBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))

	bookings, err := h.service.AllBookings(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRange):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid time range"})
	case errors.Is(err, ErrNoDatesGenerated):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "no dates generated"})
	case errors.Is(err, ErrNoValidBookings):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "no valid bookings"})
	case errors.Is(err, court.ErrNotFound):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "court not found"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "booking not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not your booking"})
	case errors.Is(err, ErrNotCancellable):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "booking cannot be cancelled"})
	case errors.Is(err, wallet.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, api.ErrorResponse{Error: "insufficient wallet balance"})
	case errors.Is(err, wallet.ErrMemberInactive):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "member is not active"})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "settlement failed"})
	}
}
