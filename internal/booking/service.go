package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"courtclub/internal/clock"
	"courtclub/internal/court"
	"courtclub/internal/db"
	"courtclub/internal/metrics"
	"courtclub/internal/wallet"
)

var (
	ErrInvalidRange     = errors.New("invalid time range")
	ErrNotFound         = errors.New("booking not found")
	ErrForbidden        = errors.New("booking belongs to another member")
	ErrNotCancellable   = errors.New("booking cannot be cancelled")
	ErrNoDatesGenerated = errors.New("no dates generated")
	ErrNoValidBookings  = errors.New("no valid bookings")
)

// Refund tiers by lead time before the booked start.
const (
	fullRefundLead = 24 * time.Hour
	halfRefundLead = 12 * time.Hour
)

type WalletService interface {
	DebitTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error)
	CreditTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error)
}

type CourtReader interface {
	GetByID(ctx context.Context, id int) (*court.Court, error)
}

type Notifier interface {
	Emit(ctx context.Context, memberID int, title, message, category string)
}

type Service interface {
	CreateBooking(ctx context.Context, memberID, courtID int, start, end time.Time) (*Booking, error)
	CreateRecurringBooking(ctx context.Context, memberID int, req RecurringRequest) ([]Booking, int64, error)
	CancelBooking(ctx context.Context, requesterID, bookingID int) (*Booking, int64, error)
	MemberBookings(ctx context.Context, memberID int) ([]BookingWithCourt, error)
	Calendar(ctx context.Context, from, to time.Time) ([]BookingWithCourt, error)
	AllBookings(ctx context.Context, limit int) ([]BookingWithCourt, error)
}

type service struct {
	db       *sqlx.DB
	repo     Repository
	courts   CourtReader
	wallet   WalletService
	notifier Notifier
	clock    clock.Clock
}

func NewService(database *sqlx.DB, repo Repository, courts CourtReader, walletSvc WalletService, notifier Notifier, clk clock.Clock) Service {
	return &service{
		db:       database,
		repo:     repo,
		courts:   courts,
		wallet:   walletSvc,
		notifier: notifier,
		clock:    clk,
	}
}

// priceFor charges per started minute so fractional hours price exactly.
func priceFor(start, end time.Time, pricePerHour int64) int64 {
	minutes := int64(end.Sub(start) / time.Minute)
	return minutes * pricePerHour / 60
}

func (s *service) CreateBooking(ctx context.Context, memberID, courtID int, start, end time.Time) (*Booking, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	crt, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return nil, err
	}

	price := priceFor(start, end, crt.PricePerHour)

	var created *Booking
	err = db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.wallet.DebitTx(ctx, tx, memberID, price, wallet.KindBookingPayment, "Booking payment"); err != nil {
			return err
		}

		created, err = s.repo.InsertTx(ctx, tx, &Booking{
			MemberID:   memberID,
			CourtID:    courtID,
			StartTime:  start,
			EndTime:    end,
			TotalPrice: price,
			Status:     StatusConfirmed,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking("single")
	s.notifier.Emit(ctx, memberID,
		"Booking confirmed",
		fmt.Sprintf("%s, %s - %s", crt.Name, start.Format("Jan 2 15:04"), end.Format("15:04")),
		"booking",
	)

	return created, nil
}

func (s *service) CreateRecurringBooking(ctx context.Context, memberID int, req RecurringRequest) ([]Booking, int64, error) {
	crt, err := s.courts.GetByID(ctx, req.CourtID)
	if err != nil {
		return nil, 0, err
	}

	wanted := make(map[time.Weekday]bool, len(req.DaysOfWeek))
	for _, d := range req.DaysOfWeek {
		wanted[d] = true
	}

	var dates []time.Time
	for d := req.FromDate; !d.After(req.ToDate); d = d.AddDate(0, 0, 1) {
		if wanted[d.Weekday()] {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, 0, ErrNoDatesGenerated
	}

	var candidates []Booking
	var totalPrice int64
	for _, d := range dates {
		start := d.Add(req.StartOfDay)
		end := d.Add(req.EndOfDay)
		if !end.After(start) {
			continue
		}

		price := priceFor(start, end, crt.PricePerHour)
		totalPrice += price

		candidates = append(candidates, Booking{
			MemberID:   memberID,
			CourtID:    req.CourtID,
			StartTime:  start,
			EndTime:    end,
			TotalPrice: price,
			Status:     StatusConfirmed,
		})
	}
	if len(candidates) == 0 {
		return nil, 0, ErrNoValidBookings
	}

	// One debit for the whole set: a concurrent reader never observes a
	// half-charged balance, and affordability is checked against the total.
	var created []Booking
	err = db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := s.wallet.DebitTx(ctx, tx, memberID, totalPrice, wallet.KindBookingRecurringPayment, "Recurring bookings payment"); err != nil {
			return err
		}

		created, err = s.repo.InsertAllTx(ctx, tx, candidates)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	metrics.RecordBooking("recurring")
	s.notifier.Emit(ctx, memberID,
		"Recurring bookings confirmed",
		fmt.Sprintf("%s, %d bookings, total %d", crt.Name, len(created), totalPrice),
		"booking",
	)

	return created, totalPrice, nil
}

// refundAmount applies the lead-time tiers: full refund a day ahead, half
// refund half a day ahead, nothing later.
func refundAmount(totalPrice int64, start, now time.Time) int64 {
	lead := start.Sub(now)
	switch {
	case lead >= fullRefundLead:
		return totalPrice
	case lead >= halfRefundLead:
		return totalPrice / 2
	default:
		return 0
	}
}

func (s *service) CancelBooking(ctx context.Context, requesterID, bookingID int) (*Booking, int64, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, 0, err
	}

	if b.MemberID != requesterID {
		return nil, 0, ErrForbidden
	}
	if b.Status != StatusConfirmed {
		return nil, 0, ErrNotCancellable
	}

	now := s.clock.Now()
	refund := refundAmount(b.TotalPrice, b.StartTime, now)

	err = db.WithinTx(ctx, s.db, func(tx *sqlx.Tx) error {
		cancelled, err := s.repo.CancelTx(ctx, tx, bookingID, now)
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrNotCancellable
		}

		if refund > 0 {
			if _, err := s.wallet.CreditTx(ctx, tx, b.MemberID, refund, wallet.KindBookingRefund, "Booking refund"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	b.Status = StatusCancelled
	b.CancelledAt = &now

	metrics.RecordBookingCancellation(refund > 0)
	if refund > 0 {
		s.notifier.Emit(ctx, requesterID,
			"Booking cancelled, refund issued",
			fmt.Sprintf("Refunded %d to your wallet.", refund),
			"booking",
		)
	} else {
		s.notifier.Emit(ctx, requesterID,
			"Booking cancelled",
			"The booking was outside the refund window.",
			"booking",
		)
	}

	return b, refund, nil
}

func (s *service) MemberBookings(ctx context.Context, memberID int) ([]BookingWithCourt, error) {
	return s.repo.ListByMember(ctx, memberID)
}

func (s *service) Calendar(ctx context.Context, from, to time.Time) ([]BookingWithCourt, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}
	return s.repo.ListInRange(ctx, from, to)
}

// AllBookings is the admin view over every booking.
func (s *service) AllBookings(ctx context.Context, limit int) ([]BookingWithCourt, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	return s.repo.ListAll(ctx, limit)
}
