package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"courtclub/internal/court"
	"courtclub/internal/wallet"
)

type MockBookingRepo struct{ mock.Mock }

func (m *MockBookingRepo) InsertTx(ctx context.Context, tx *sqlx.Tx, b *Booking) (*Booking, error) {
	args := m.Called(ctx, tx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) InsertAllTx(ctx context.Context, tx *sqlx.Tx, bs []Booking) ([]Booking, error) {
	args := m.Called(ctx, tx, bs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockBookingRepo) GetByID(ctx context.Context, id int) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) CancelTx(ctx context.Context, tx *sqlx.Tx, id int, cancelledAt time.Time) (bool, error) {
	args := m.Called(ctx, tx, id, cancelledAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) ListByMember(ctx context.Context, memberID int) ([]BookingWithCourt, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithCourt), args.Error(1)
}

func (m *MockBookingRepo) ListInRange(ctx context.Context, from, to time.Time) ([]BookingWithCourt, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithCourt), args.Error(1)
}

func (m *MockBookingRepo) ListAll(ctx context.Context, limit int) ([]BookingWithCourt, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithCourt), args.Error(1)
}

type MockCourtReader struct{ mock.Mock }

func (m *MockCourtReader) GetByID(ctx context.Context, id int) (*court.Court, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*court.Court), args.Error(1)
}

type MockWallet struct{ mock.Mock }

func (m *MockWallet) DebitTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, memberID, amount, kind, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

func (m *MockWallet) CreditTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, memberID, amount, kind, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

type noopNotifier struct{}

func (noopNotifier) Emit(ctx context.Context, memberID int, title, message, category string) {}

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCreateBooking_DebitsFullPrice(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	repo := new(MockBookingRepo)
	courts := new(MockCourtReader)
	wlt := new(MockWallet)

	courts.On("GetByID", mock.Anything, 1).
		Return(&court.Court{ID: 1, Name: "Court 1", PricePerHour: 50000, IsActive: true}, nil)
	// 2 hours at 50000/hour
	wlt.On("DebitTx", mock.Anything, mock.Anything, 1, int64(100000), wallet.KindBookingPayment, "Booking payment").
		Return(&wallet.Transaction{ID: 1, MemberID: 1, Amount: -100000, Kind: wallet.KindBookingPayment}, nil)
	repo.On("InsertTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&Booking{ID: 9, MemberID: 1, CourtID: 1, StartTime: start, EndTime: end, TotalPrice: 100000, Status: StatusConfirmed}, nil)

	svc := NewService(sqlxDB, repo, courts, wlt, noopNotifier{}, fixedClock{t: start.Add(-48 * time.Hour)})

	b, err := svc.CreateBooking(context.Background(), 1, 1, start, end)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, int64(100000), b.TotalPrice)

	wlt.AssertExpectations(t)
	repo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCreateBooking_InvalidRange(t *testing.T) {
	sqlxDB, _ := newMockDB(t)
	repo := new(MockBookingRepo)
	courts := new(MockCourtReader)
	wlt := new(MockWallet)

	svc := NewService(sqlxDB, repo, courts, wlt, noopNotifier{}, fixedClock{t: time.Now()})

	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	_, err := svc.CreateBooking(context.Background(), 1, 1, start, start)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.CreateBooking(context.Background(), 1, 1, start, start.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidRange)

	wlt.AssertNotCalled(t, "DebitTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBooking_InsufficientFunds_NothingPersisted(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	repo := new(MockBookingRepo)
	courts := new(MockCourtReader)
	wlt := new(MockWallet)

	courts.On("GetByID", mock.Anything, 1).
		Return(&court.Court{ID: 1, PricePerHour: 50000, IsActive: true}, nil)
	wlt.On("DebitTx", mock.Anything, mock.Anything, 1, int64(100000), wallet.KindBookingPayment, "Booking payment").
		Return(nil, wallet.ErrInsufficientFunds)

	svc := NewService(sqlxDB, repo, courts, wlt, noopNotifier{}, fixedClock{t: start.Add(-48 * time.Hour)})

	_, err := svc.CreateBooking(context.Background(), 1, 1, start, start.Add(2*time.Hour))
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	repo.AssertNotCalled(t, "InsertTx", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCancelBooking_FullRefundTier(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(30 * time.Hour)

	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo := new(MockBookingRepo)
	wlt := new(MockWallet)

	repo.On("GetByID", mock.Anything, 5).
		Return(&Booking{ID: 5, MemberID: 1, CourtID: 1, StartTime: start, TotalPrice: 100000, Status: StatusConfirmed}, nil)
	repo.On("CancelTx", mock.Anything, mock.Anything, 5, now).Return(true, nil)
	wlt.On("CreditTx", mock.Anything, mock.Anything, 1, int64(100000), wallet.KindBookingRefund, "Booking refund").
		Return(&wallet.Transaction{ID: 2, MemberID: 1, Amount: 100000, Kind: wallet.KindBookingRefund}, nil)

	svc := NewService(sqlxDB, repo, new(MockCourtReader), wlt, noopNotifier{}, fixedClock{t: now})

	b, refund, err := svc.CancelBooking(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, int64(100000), refund)

	wlt.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCancelBooking_HalfRefundTier(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(18 * time.Hour)

	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo := new(MockBookingRepo)
	wlt := new(MockWallet)

	repo.On("GetByID", mock.Anything, 5).
		Return(&Booking{ID: 5, MemberID: 1, StartTime: start, TotalPrice: 100000, Status: StatusConfirmed}, nil)
	repo.On("CancelTx", mock.Anything, mock.Anything, 5, now).Return(true, nil)
	wlt.On("CreditTx", mock.Anything, mock.Anything, 1, int64(50000), wallet.KindBookingRefund, "Booking refund").
		Return(&wallet.Transaction{ID: 3, MemberID: 1, Amount: 50000, Kind: wallet.KindBookingRefund}, nil)

	svc := NewService(sqlxDB, repo, new(MockCourtReader), wlt, noopNotifier{}, fixedClock{t: now})

	_, refund, err := svc.CancelBooking(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), refund)
}

func TestCancelBooking_NoRefundStillCancels(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	start := now.Add(10 * time.Hour)

	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo := new(MockBookingRepo)
	wlt := new(MockWallet)

	repo.On("GetByID", mock.Anything, 5).
		Return(&Booking{ID: 5, MemberID: 1, StartTime: start, TotalPrice: 100000, Status: StatusConfirmed}, nil)
	repo.On("CancelTx", mock.Anything, mock.Anything, 5, now).Return(true, nil)

	svc := NewService(sqlxDB, repo, new(MockCourtReader), wlt, noopNotifier{}, fixedClock{t: now})

	b, refund, err := svc.CancelBooking(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
	assert.Equal(t, int64(0), refund)

	wlt.AssertNotCalled(t, "CreditTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_Guards(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("not owner", func(t *testing.T) {
		sqlxDB, _ := newMockDB(t)
		repo := new(MockBookingRepo)
		repo.On("GetByID", mock.Anything, 5).
			Return(&Booking{ID: 5, MemberID: 2, Status: StatusConfirmed}, nil)

		svc := NewService(sqlxDB, repo, new(MockCourtReader), new(MockWallet), noopNotifier{}, fixedClock{t: now})
		_, _, err := svc.CancelBooking(context.Background(), 1, 5)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("already cancelled", func(t *testing.T) {
		sqlxDB, _ := newMockDB(t)
		repo := new(MockBookingRepo)
		repo.On("GetByID", mock.Anything, 5).
			Return(&Booking{ID: 5, MemberID: 1, Status: StatusCancelled}, nil)

		svc := NewService(sqlxDB, repo, new(MockCourtReader), new(MockWallet), noopNotifier{}, fixedClock{t: now})
		_, _, err := svc.CancelBooking(context.Background(), 1, 5)
		assert.ErrorIs(t, err, ErrNotCancellable)
	})

	t.Run("not found", func(t *testing.T) {
		sqlxDB, _ := newMockDB(t)
		repo := new(MockBookingRepo)
		repo.On("GetByID", mock.Anything, 5).Return(nil, ErrNotFound)

		svc := NewService(sqlxDB, repo, new(MockCourtReader), new(MockWallet), noopNotifier{}, fixedClock{t: now})
		_, _, err := svc.CancelBooking(context.Background(), 1, 5)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCreateRecurringBooking_AggregateDebit(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo := new(MockBookingRepo)
	courts := new(MockCourtReader)
	wlt := new(MockWallet)

	courts.On("GetByID", mock.Anything, 1).
		Return(&court.Court{ID: 1, Name: "Court 1", PricePerHour: 20000, IsActive: true}, nil)

	// Mon 2026-03-02 .. Sun 2026-03-15, Wednesdays: 2 dates, 1 hour each
	req := RecurringRequest{
		CourtID:    1,
		FromDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ToDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		StartOfDay: 18 * time.Hour,
		EndOfDay:   19 * time.Hour,
		DaysOfWeek: []time.Weekday{time.Wednesday},
	}

	wlt.On("DebitTx", mock.Anything, mock.Anything, 1, int64(40000), wallet.KindBookingRecurringPayment, "Recurring bookings payment").
		Return(&wallet.Transaction{ID: 4, MemberID: 1, Amount: -40000, Kind: wallet.KindBookingRecurringPayment}, nil)
	repo.On("InsertAllTx", mock.Anything, mock.Anything, mock.MatchedBy(func(bs []Booking) bool {
		return len(bs) == 2 &&
			bs[0].StartTime.Equal(time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)) &&
			bs[1].StartTime.Equal(time.Date(2026, 3, 11, 18, 0, 0, 0, time.UTC)) &&
			bs[0].TotalPrice == 20000
	})).Return([]Booking{
		{ID: 1, Status: StatusConfirmed, TotalPrice: 20000},
		{ID: 2, Status: StatusConfirmed, TotalPrice: 20000},
	}, nil)

	svc := NewService(sqlxDB, repo, courts, wlt, noopNotifier{}, fixedClock{t: time.Now()})

	bookings, total, err := svc.CreateRecurringBooking(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, int64(40000), total)

	wlt.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCreateRecurringBooking_InsufficientAggregate(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	repo := new(MockBookingRepo)
	courts := new(MockCourtReader)
	wlt := new(MockWallet)

	courts.On("GetByID", mock.Anything, 1).
		Return(&court.Court{ID: 1, PricePerHour: 20000, IsActive: true}, nil)

	// 3 occurrences at 20000 each; member can afford two but not three.
	req := RecurringRequest{
		CourtID:    1,
		FromDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ToDate:     time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		StartOfDay: 18 * time.Hour,
		EndOfDay:   19 * time.Hour,
		DaysOfWeek: []time.Weekday{time.Friday},
	}

	wlt.On("DebitTx", mock.Anything, mock.Anything, 1, int64(60000), wallet.KindBookingRecurringPayment, "Recurring bookings payment").
		Return(nil, wallet.ErrInsufficientFunds)

	svc := NewService(sqlxDB, repo, courts, wlt, noopNotifier{}, fixedClock{t: time.Now()})

	_, _, err := svc.CreateRecurringBooking(context.Background(), 1, req)
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	repo.AssertNotCalled(t, "InsertAllTx", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCreateRecurringBooking_NoDatesGenerated(t *testing.T) {
	sqlxDB, _ := newMockDB(t)
	courts := new(MockCourtReader)
	courts.On("GetByID", mock.Anything, 1).
		Return(&court.Court{ID: 1, PricePerHour: 20000, IsActive: true}, nil)

	// span contains no Sunday
	req := RecurringRequest{
		CourtID:    1,
		FromDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ToDate:     time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC),
		StartOfDay: 18 * time.Hour,
		EndOfDay:   19 * time.Hour,
		DaysOfWeek: []time.Weekday{time.Sunday},
	}

	svc := NewService(sqlxDB, new(MockBookingRepo), courts, new(MockWallet), noopNotifier{}, fixedClock{t: time.Now()})

	_, _, err := svc.CreateRecurringBooking(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrNoDatesGenerated)
}

func TestCreateRecurringBooking_AllCandidatesZeroLength(t *testing.T) {
	sqlxDB, _ := newMockDB(t)
	courts := new(MockCourtReader)
	courts.On("GetByID", mock.Anything, 1).
		Return(&court.Court{ID: 1, PricePerHour: 20000, IsActive: true}, nil)

	req := RecurringRequest{
		CourtID:    1,
		FromDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ToDate:     time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
		StartOfDay: 19 * time.Hour,
		EndOfDay:   18 * time.Hour,
		DaysOfWeek: []time.Weekday{time.Wednesday},
	}

	svc := NewService(sqlxDB, new(MockBookingRepo), courts, new(MockWallet), noopNotifier{}, fixedClock{t: time.Now()})

	_, _, err := svc.CreateRecurringBooking(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrNoValidBookings)
}

func TestPriceFor_FractionalHours(t *testing.T) {
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(100000), priceFor(start, start.Add(2*time.Hour), 50000))
	assert.Equal(t, int64(75000), priceFor(start, start.Add(90*time.Minute), 50000))
	assert.Equal(t, int64(25000), priceFor(start, start.Add(30*time.Minute), 50000))
}
