package tournament

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"courtclub/internal/wallet"
)

type MockTournamentRepo struct{ mock.Mock }

func (m *MockTournamentRepo) Create(ctx context.Context, t *Tournament) (*Tournament, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tournament), args.Error(1)
}

func (m *MockTournamentRepo) GetByID(ctx context.Context, id int) (*Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tournament), args.Error(1)
}

func (m *MockTournamentRepo) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*Tournament, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tournament), args.Error(1)
}

func (m *MockTournamentRepo) List(ctx context.Context, status Status) ([]Tournament, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Tournament), args.Error(1)
}

func (m *MockTournamentRepo) CountParticipantsTx(ctx context.Context, tx *sqlx.Tx, tournamentID int) (int, error) {
	args := m.Called(ctx, tx, tournamentID)
	return args.Int(0), args.Error(1)
}

func (m *MockTournamentRepo) HasParticipantTx(ctx context.Context, tx *sqlx.Tx, tournamentID, memberID int) (bool, error) {
	args := m.Called(ctx, tx, tournamentID, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTournamentRepo) AddParticipantTx(ctx context.Context, tx *sqlx.Tx, p *Participant) (*Participant, error) {
	args := m.Called(ctx, tx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Participant), args.Error(1)
}

func (m *MockTournamentRepo) ListParticipants(ctx context.Context, tournamentID int) ([]Participant, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Participant), args.Error(1)
}

func (m *MockTournamentRepo) SetStatus(ctx context.Context, id int, status Status) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockWallet struct{ mock.Mock }

func (m *MockWallet) DebitTx(ctx context.Context, tx *sqlx.Tx, memberID int, amount int64, kind wallet.Kind, description string) (*wallet.Transaction, error) {
	args := m.Called(ctx, tx, memberID, amount, kind, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Transaction), args.Error(1)
}

type noopNotifier struct{}

func (noopNotifier) Emit(ctx context.Context, memberID int, title, message, category string) {}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func openTournament() *Tournament {
	return &Tournament{
		ID:         3,
		Name:       "Spring Open",
		EntryFee:   30000,
		MaxPlayers: 16,
		StartDate:  time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		Status:     StatusOpen,
	}
}

func TestJoin_ChargesEntryFee(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	repo := new(MockTournamentRepo)
	wlt := new(MockWallet)

	repo.On("GetForUpdateTx", mock.Anything, mock.Anything, 3).Return(openTournament(), nil)
	repo.On("HasParticipantTx", mock.Anything, mock.Anything, 3, 1).Return(false, nil)
	repo.On("CountParticipantsTx", mock.Anything, mock.Anything, 3).Return(5, nil)
	wlt.On("DebitTx", mock.Anything, mock.Anything, 1, int64(30000), wallet.KindTournamentEntry, "Entry fee for tournament Spring Open").
		Return(&wallet.Transaction{ID: 1, MemberID: 1, Amount: -30000}, nil)
	repo.On("AddParticipantTx", mock.Anything, mock.Anything, mock.MatchedBy(func(p *Participant) bool {
		return p.TournamentID == 3 && p.MemberID == 1 && p.TeamSize == 1 && p.Status == ParticipantJoined
	})).Return(&Participant{ID: 10, TournamentID: 3, MemberID: 1, Status: ParticipantJoined, TeamSize: 1}, nil)

	svc := NewService(sqlxDB, repo, wlt, noopNotifier{})

	p, err := svc.Join(context.Background(), 1, 3, JoinRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, p.TournamentID)

	wlt.AssertExpectations(t)
	repo.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestJoin_FreeTournamentSkipsWallet(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	free := openTournament()
	free.EntryFee = 0

	repo := new(MockTournamentRepo)
	wlt := new(MockWallet)

	repo.On("GetForUpdateTx", mock.Anything, mock.Anything, 3).Return(free, nil)
	repo.On("HasParticipantTx", mock.Anything, mock.Anything, 3, 1).Return(false, nil)
	repo.On("CountParticipantsTx", mock.Anything, mock.Anything, 3).Return(0, nil)
	repo.On("AddParticipantTx", mock.Anything, mock.Anything, mock.Anything).
		Return(&Participant{ID: 11, TournamentID: 3, MemberID: 1, TeamSize: 1}, nil)

	svc := NewService(sqlxDB, repo, wlt, noopNotifier{})

	_, err := svc.Join(context.Background(), 1, 3, JoinRequest{})
	require.NoError(t, err)

	wlt.AssertNotCalled(t, "DebitTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJoin_InsufficientFunds_NoSeatTaken(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	repo := new(MockTournamentRepo)
	wlt := new(MockWallet)

	repo.On("GetForUpdateTx", mock.Anything, mock.Anything, 3).Return(openTournament(), nil)
	repo.On("HasParticipantTx", mock.Anything, mock.Anything, 3, 1).Return(false, nil)
	repo.On("CountParticipantsTx", mock.Anything, mock.Anything, 3).Return(5, nil)
	wlt.On("DebitTx", mock.Anything, mock.Anything, 1, int64(30000), wallet.KindTournamentEntry, "Entry fee for tournament Spring Open").
		Return(nil, wallet.ErrInsufficientFunds)

	svc := NewService(sqlxDB, repo, wlt, noopNotifier{})

	_, err := svc.Join(context.Background(), 1, 3, JoinRequest{})
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	repo.AssertNotCalled(t, "AddParticipantTx", mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestJoin_Guards(t *testing.T) {
	t.Run("not open", func(t *testing.T) {
		sqlxDB, dbMock := newMockDB(t)
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		closed := openTournament()
		closed.Status = StatusOngoing

		repo := new(MockTournamentRepo)
		repo.On("GetForUpdateTx", mock.Anything, mock.Anything, 3).Return(closed, nil)

		svc := NewService(sqlxDB, repo, new(MockWallet), noopNotifier{})
		_, err := svc.Join(context.Background(), 1, 3, JoinRequest{})
		assert.ErrorIs(t, err, ErrNotOpen)
	})

	t.Run("already joined", func(t *testing.T) {
		sqlxDB, dbMock := newMockDB(t)
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		repo := new(MockTournamentRepo)
		repo.On("GetForUpdateTx", mock.Anything, mock.Anything, 3).Return(openTournament(), nil)
		repo.On("HasParticipantTx", mock.Anything, mock.Anything, 3, 1).Return(true, nil)

		svc := NewService(sqlxDB, repo, new(MockWallet), noopNotifier{})
		_, err := svc.Join(context.Background(), 1, 3, JoinRequest{})
		assert.ErrorIs(t, err, ErrAlreadyJoined)
	})

	t.Run("full", func(t *testing.T) {
		sqlxDB, dbMock := newMockDB(t)
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		repo := new(MockTournamentRepo)
		wlt := new(MockWallet)
		repo.On("GetForUpdateTx", mock.Anything, mock.Anything, 3).Return(openTournament(), nil)
		repo.On("HasParticipantTx", mock.Anything, mock.Anything, 3, 1).Return(false, nil)
		repo.On("CountParticipantsTx", mock.Anything, mock.Anything, 3).Return(16, nil)

		svc := NewService(sqlxDB, repo, wlt, noopNotifier{})
		_, err := svc.Join(context.Background(), 1, 3, JoinRequest{})
		assert.ErrorIs(t, err, ErrFull)

		wlt.AssertNotCalled(t, "DebitTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		sqlxDB, dbMock := newMockDB(t)
		dbMock.ExpectBegin()
		dbMock.ExpectRollback()

		repo := new(MockTournamentRepo)
		repo.On("GetForUpdateTx", mock.Anything, mock.Anything, 3).Return(nil, ErrNotFound)

		svc := NewService(sqlxDB, repo, new(MockWallet), noopNotifier{})
		_, err := svc.Join(context.Background(), 1, 3, JoinRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
