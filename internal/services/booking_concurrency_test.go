package services

import (
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// seatLedger is an in-memory booking store for concurrency tests. It
// serializes every capacity check and status change behind one lock, the
// same discipline the SQL store gets from its route-row lock.
type seatLedger struct {
	mu       sync.Mutex
	routeID  string
	driverID string
	capacity int
	price    float64
	bookings map[string]*models.Booking
}

func newSeatLedger(routeID, driverID string, capacity int) *seatLedger {
	return &seatLedger{
		routeID:  routeID,
		driverID: driverID,
		capacity: capacity,
		price:    100,
		bookings: make(map[string]*models.Booking),
	}
}

func (l *seatLedger) confirmedLocked() int {
	sum := 0
	for _, b := range l.bookings {
		if b.Status == models.BookingStatusConfirmed {
			sum += b.SeatsBooked
		}
	}
	return sum
}

func (l *seatLedger) confirmedSeats() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.confirmedLocked()
}

func (l *seatLedger) Create(routeID, passengerID string, seats int) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if routeID != l.routeID {
		return nil, database.ErrRouteNotFound
	}
	remaining := l.capacity - l.confirmedLocked()
	if seats > remaining {
		return nil, &database.CapacityExceededError{Requested: seats, Remaining: remaining}
	}

	b := &models.Booking{
		ID:          uuid.New().String(),
		RouteID:     routeID,
		PassengerID: passengerID,
		SeatsBooked: seats,
		PricePaid:   float64(seats) * l.price,
		Status:      models.BookingStatusPending,
	}
	l.bookings[b.ID] = b
	copied := *b
	return &copied, nil
}

func (l *seatLedger) Approve(bookingID, driverID string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok {
		return nil, database.ErrBookingNotFound
	}
	if driverID != l.driverID {
		return nil, database.ErrForbidden
	}
	if b.Status != models.BookingStatusPending {
		return nil, database.ErrInvalidStateTransition
	}

	remaining := l.capacity - l.confirmedLocked()
	if b.SeatsBooked > remaining {
		return nil, &database.CapacityExceededError{Requested: b.SeatsBooked, Remaining: remaining}
	}

	b.Status = models.BookingStatusConfirmed
	copied := *b
	return &copied, nil
}

func (l *seatLedger) Reject(bookingID, driverID string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok {
		return nil, database.ErrBookingNotFound
	}
	if driverID != l.driverID {
		return nil, database.ErrForbidden
	}
	if b.Status != models.BookingStatusPending {
		return nil, database.ErrInvalidStateTransition
	}

	b.Status = models.BookingStatusRejected
	copied := *b
	return &copied, nil
}

func (l *seatLedger) Cancel(bookingID, passengerID, reason string) (*models.Booking, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok {
		return nil, "", database.ErrBookingNotFound
	}
	if b.PassengerID != passengerID {
		return nil, "", database.ErrForbidden
	}
	if b.Status == models.BookingStatusCancelled {
		return nil, "", database.ErrAlreadyCancelled
	}
	if b.IsTerminal() {
		return nil, "", database.ErrInvalidStateTransition
	}

	b.Status = models.BookingStatusCancelled
	b.CancellationReason = &reason
	copied := *b
	return &copied, l.driverID, nil
}

func (l *seatLedger) GetByID(bookingID string) (*models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bookings[bookingID]
	if !ok {
		return nil, database.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (l *seatLedger) ListByPassenger(passengerID string) ([]models.BookingDetail, error) {
	return []models.BookingDetail{}, nil
}

func (l *seatLedger) ListByDriver(driverID string) ([]models.BookingRequestDetail, error) {
	return []models.BookingRequestDetail{}, nil
}

type staticRoutes struct {
	info *database.ConversationInfo
}

func (r staticRoutes) GetConversationInfo(routeID string) (*database.ConversationInfo, error) {
	return r.info, nil
}

type staticUsers struct{}

func (staticUsers) GetByID(userID string) (*models.User, error) {
	return &models.User{ID: userID, Username: "anna"}, nil
}

// absentConversations never has a conversation and never creates one
type absentConversations struct{}

func (absentConversations) EnsureForBooking(routeID, creatorID, otherID string) (string, error) {
	return uuid.New().String(), nil
}

func (absentConversations) FindForBooking(routeID, userA, userB string) (string, error) {
	return "", database.ErrConversationNotFound
}

type droppedNotices struct{}

func (droppedNotices) Post(conversationID, actorID, event, content string) {}

func newLedgerBookingService(ledger *seatLedger) *BookingService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewBookingService(
		ledger,
		staticRoutes{info: &database.ConversationInfo{
			DriverID:  ledger.driverID,
			StartCity: "København",
			EndCity:   "Aarhus",
		}},
		staticUsers{},
		absentConversations{},
		droppedNotices{},
		logger,
	)
}

// Ten pending single-seat requests race for three seats. Exactly three
// approvals may win; the confirmed sum never exceeds capacity.
func TestConcurrentApprovalsNeverOverbook(t *testing.T) {
	routeID := uuid.New().String()
	driverID := uuid.New().String()
	ledger := newSeatLedger(routeID, driverID, 3)
	svc := newLedgerBookingService(ledger)

	const requests = 10
	bookingIDs := make([]string, 0, requests)
	for i := 0; i < requests; i++ {
		booking, err := svc.CreateBooking(routeID, uuid.New().String(), 1)
		require.NoError(t, err)
		bookingIDs = append(bookingIDs, booking.ID)
	}

	errs := make(chan error, requests)
	var wg sync.WaitGroup
	for _, id := range bookingIDs {
		wg.Add(1)
		go func(bookingID string) {
			defer wg.Done()
			_, err := svc.ApproveBooking(bookingID, driverID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	approved, refused := 0, 0
	for err := range errs {
		if err == nil {
			approved++
			continue
		}
		var capacityErr *database.CapacityExceededError
		require.ErrorAs(t, err, &capacityErr)
		refused++
	}

	assert.Equal(t, 3, approved)
	assert.Equal(t, 7, refused)
	assert.Equal(t, 3, ledger.confirmedSeats())
}

// Mixed seat counts racing for four seats: whatever interleaving wins, the
// confirmed sum stays within capacity and every loser sees a capacity error.
func TestConcurrentMixedSeatApprovals(t *testing.T) {
	routeID := uuid.New().String()
	driverID := uuid.New().String()
	ledger := newSeatLedger(routeID, driverID, 4)
	svc := newLedgerBookingService(ledger)

	seatCounts := []int{2, 2, 3, 1, 1, 4, 2}
	bookingIDs := make([]string, 0, len(seatCounts))
	for _, seats := range seatCounts {
		booking, err := svc.CreateBooking(routeID, uuid.New().String(), seats)
		require.NoError(t, err)
		bookingIDs = append(bookingIDs, booking.ID)
	}

	errs := make(chan error, len(bookingIDs))
	var wg sync.WaitGroup
	for _, id := range bookingIDs {
		wg.Add(1)
		go func(bookingID string) {
			defer wg.Done()
			_, err := svc.ApproveBooking(bookingID, driverID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			var capacityErr *database.CapacityExceededError
			require.ErrorAs(t, err, &capacityErr)
		}
	}

	assert.LessOrEqual(t, ledger.confirmedSeats(), 4)
	assert.Greater(t, ledger.confirmedSeats(), 0)
}
