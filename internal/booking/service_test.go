package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Saurabhrajput1234/BookMySeat/internal/booking"
	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

// Mock implementations

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ReserveSeat(ctx context.Context, userID, eventID, seatID int64) (*models.Booking, error) {
	args := m.Called(ctx, userID, eventID, seatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockStore) ReleaseBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockStore) GetBookingByID(ctx context.Context, bookingID int64, withRelations bool) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, withRelations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockStore) UpdateBooking(ctx context.Context, b *models.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockStore) ListBookingsByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockStore) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockStore) ListBookingsByEvent(ctx context.Context, eventID int64) ([]models.Booking, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSeatStatus(ctx context.Context, update models.SeatStatusUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendBookingConfirmation(ctx context.Context, toEmail, userName, eventName, seatInfo string) error {
	args := m.Called(ctx, toEmail, userName, eventName, seatInfo)
	return args.Error(0)
}

func newService(store booking.Store, pub booking.Publisher, mailer booking.Mailer) *booking.Service {
	return booking.NewService(store, pub, mailer, logger.NewLogger())
}

func TestBook_Unauthorized(t *testing.T) {
	store := new(MockStore)
	svc := newService(store, nil, nil)

	_, err := svc.Book(context.Background(), 0, 7, 42)
	assert.ErrorIs(t, err, booking.ErrUnauthorized)
	store.AssertNotCalled(t, "ReserveSeat")
}

func TestBook_InvalidIDs(t *testing.T) {
	store := new(MockStore)
	svc := newService(store, nil, nil)

	_, err := svc.Book(context.Background(), 1, 0, 42)
	assert.ErrorIs(t, err, booking.ErrSeatNotFound)

	_, err = svc.Book(context.Background(), 1, 7, -1)
	assert.ErrorIs(t, err, booking.ErrSeatNotFound)
}

func TestBook_SeatNotFound(t *testing.T) {
	store := new(MockStore)
	store.On("ReserveSeat", mock.Anything, int64(1), int64(7), int64(999)).
		Return(nil, booking.ErrSeatNotFound)
	svc := newService(store, nil, nil)

	_, err := svc.Book(context.Background(), 1, 7, 999)
	assert.ErrorIs(t, err, booking.ErrSeatNotFound)
}

func TestBook_SeatAlreadyBooked(t *testing.T) {
	store := new(MockStore)
	store.On("ReserveSeat", mock.Anything, int64(2), int64(7), int64(42)).
		Return(nil, booking.ErrSeatAlreadyBooked)
	pub := new(MockPublisher)
	svc := newService(store, pub, nil)

	_, err := svc.Book(context.Background(), 2, 7, 42)
	assert.ErrorIs(t, err, booking.ErrSeatAlreadyBooked)
	pub.AssertNotCalled(t, "PublishSeatStatus")
}

func TestBook_StoreFailureIsGeneric(t *testing.T) {
	store := new(MockStore)
	store.On("ReserveSeat", mock.Anything, int64(1), int64(7), int64(42)).
		Return(nil, errors.New("connection reset"))
	svc := newService(store, nil, nil)

	_, err := svc.Book(context.Background(), 1, 7, 42)
	assert.ErrorIs(t, err, booking.ErrBookingFailed)
	// Internal detail must not leak to the caller.
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestBook_PublishesAfterSuccess(t *testing.T) {
	store := new(MockStore)
	store.On("ReserveSeat", mock.Anything, int64(1), int64(7), int64(42)).
		Return(&models.Booking{ID: 10, UserID: 1, EventID: 7, SeatID: 42}, nil)

	pub := new(MockPublisher)
	pub.On("PublishSeatStatus", mock.Anything, models.SeatStatusUpdate{EventID: 7, SeatID: 42, IsBooked: true}).
		Return(nil)

	svc := newService(store, pub, nil)
	id, err := svc.Book(context.Background(), 1, 7, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(10), id)
	pub.AssertExpectations(t)
}

func TestBook_PublishFailureDoesNotFailBooking(t *testing.T) {
	store := new(MockStore)
	store.On("ReserveSeat", mock.Anything, int64(1), int64(7), int64(42)).
		Return(&models.Booking{ID: 11, UserID: 1, EventID: 7, SeatID: 42}, nil)

	pub := new(MockPublisher)
	pub.On("PublishSeatStatus", mock.Anything, mock.Anything).
		Return(errors.New("broker unavailable"))

	svc := newService(store, pub, nil)
	id, err := svc.Book(context.Background(), 1, 7, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestCancel_NotFound(t *testing.T) {
	store := new(MockStore)
	store.On("ReleaseBooking", mock.Anything, int64(99)).
		Return(nil, booking.ErrBookingNotFound)
	svc := newService(store, nil, nil)

	err := svc.Cancel(context.Background(), 99)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestCancel_PublishesSeatFreed(t *testing.T) {
	store := new(MockStore)
	store.On("ReleaseBooking", mock.Anything, int64(10)).
		Return(&models.Booking{ID: 10, UserID: 1, EventID: 7, SeatID: 42}, nil)

	pub := new(MockPublisher)
	pub.On("PublishSeatStatus", mock.Anything, models.SeatStatusUpdate{EventID: 7, SeatID: 42, IsBooked: false}).
		Return(nil)

	svc := newService(store, pub, nil)
	require.NoError(t, svc.Cancel(context.Background(), 10))
	pub.AssertExpectations(t)
}

func TestConfirmPayment_MarksPaidAndSendsEmail(t *testing.T) {
	b := &models.Booking{
		ID:            10,
		UserID:        1,
		EventID:       7,
		SeatID:        42,
		PaymentStatus: models.PaymentPending,
		User:          &models.User{ID: 1, Name: "Ada", Email: "ada@example.com"},
		Event:         &models.Event{ID: 7, Name: "Go Conference"},
		Seat:          &models.Seat{ID: 42, Row: "B", Number: 4},
	}

	store := new(MockStore)
	store.On("GetBookingByID", mock.Anything, int64(10), true).Return(b, nil)
	store.On("UpdateBooking", mock.Anything, mock.MatchedBy(func(updated *models.Booking) bool {
		return updated.PaymentStatus == models.PaymentPaid && updated.PaymentIntentID == "pi_123"
	})).Return(nil)

	mailer := new(MockMailer)
	mailer.On("SendBookingConfirmation", mock.Anything, "ada@example.com", "Ada", "Go Conference", "Row B, Number 4").
		Return(nil)

	svc := newService(store, nil, mailer)
	require.NoError(t, svc.ConfirmPayment(context.Background(), 10, "pi_123"))

	store.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestConfirmPayment_IdempotentWhenAlreadyPaid(t *testing.T) {
	b := &models.Booking{ID: 10, PaymentStatus: models.PaymentPaid}

	store := new(MockStore)
	store.On("GetBookingByID", mock.Anything, int64(10), true).Return(b, nil)

	mailer := new(MockMailer)
	svc := newService(store, nil, mailer)

	require.NoError(t, svc.ConfirmPayment(context.Background(), 10, "pi_123"))
	require.NoError(t, svc.ConfirmPayment(context.Background(), 10, "pi_123"))

	store.AssertNotCalled(t, "UpdateBooking")
	mailer.AssertNotCalled(t, "SendBookingConfirmation")
}

func TestConfirmPayment_EmailFailureIsSwallowed(t *testing.T) {
	b := &models.Booking{
		ID:            10,
		PaymentStatus: models.PaymentPending,
		User:          &models.User{Email: "ada@example.com", Name: "Ada"},
		Event:         &models.Event{Name: "Go Conference"},
		Seat:          &models.Seat{Row: "B", Number: 4},
	}

	store := new(MockStore)
	store.On("GetBookingByID", mock.Anything, int64(10), true).Return(b, nil)
	store.On("UpdateBooking", mock.Anything, mock.Anything).Return(nil)

	mailer := new(MockMailer)
	mailer.On("SendBookingConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp timeout"))

	svc := newService(store, nil, mailer)
	assert.NoError(t, svc.ConfirmPayment(context.Background(), 10, "pi_123"))
}

// fakeStore reproduces the store's reservation semantics in memory so the
// coordinator can be hammered concurrently without a database.
type fakeStore struct {
	MockStore

	mu     sync.Mutex
	booked map[int64]bool
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{booked: make(map[int64]bool)}
}

func (f *fakeStore) ReserveSeat(ctx context.Context, userID, eventID, seatID int64) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.booked[seatID] {
		return nil, booking.ErrSeatAlreadyBooked
	}
	f.booked[seatID] = true
	f.nextID++
	return &models.Booking{
		ID:            f.nextID,
		UserID:        userID,
		EventID:       eventID,
		SeatID:        seatID,
		BookingTime:   time.Now().UTC(),
		PaymentStatus: models.PaymentPending,
	}, nil
}

func TestBook_ConcurrentCallersOneWinner(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, nil, nil)

	const callers = 50
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.Book(context.Background(), userID, 7, 42)
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, booking.ErrSeatAlreadyBooked):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, int64(1), store.nextID, "exactly one booking row created")
}
