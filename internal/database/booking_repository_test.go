package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockDB wraps a sqlmock connection so it satisfies the DB interface,
// transactions included.
func newMockDB(t *testing.T) (DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	return &PostgresDB{DB: sqlxDB}, mock
}

const (
	lockRouteQuery   = `SELECT seat_capacity, price_per_seat, driver_id`
	sumConfirmed     = `SELECT COALESCE`
	lockBookingQuery = `SELECT b.id, b.route_id, b.passenger_id`
)

func lockedRouteRows(capacity int, price float64, driverID string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"seat_capacity", "price_per_seat", "driver_id"}).
		AddRow(capacity, price, driverID)
}

func confirmedRows(sum int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"coalesce"}).AddRow(sum)
}

func lockedBookingRows(bookingID, routeID, passengerID string, seats int, price float64, status, driverID string, capacity int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "route_id", "passenger_id", "seats_booked", "price_paid",
		"status", "driver_id", "seat_capacity",
	}).AddRow(bookingID, routeID, passengerID, seats, price, status, driverID, capacity)
}

func TestCreateBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	routeID := uuid.New().String()
	passengerID := uuid.New().String()
	driverID := uuid.New().String()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(lockRouteQuery).
			WithArgs(routeID).
			WillReturnRows(lockedRouteRows(3, 120, driverID))
		mock.ExpectQuery(sumConfirmed).
			WithArgs(routeID).
			WillReturnRows(confirmedRows(0))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectCommit()

		booking, err := repo.Create(routeID, passengerID, 2)
		require.NoError(t, err)
		assert.Equal(t, routeID, booking.RouteID)
		assert.Equal(t, passengerID, booking.PassengerID)
		assert.Equal(t, 2, booking.SeatsBooked)
		assert.Equal(t, 240.0, booking.PricePaid)
		assert.Equal(t, "pending", string(booking.Status))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Route Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockRouteQuery).
			WithArgs(routeID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		booking, err := repo.Create(routeID, passengerID, 1)
		assert.ErrorIs(t, err, ErrRouteNotFound)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Capacity Exceeded", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockRouteQuery).
			WithArgs(routeID).
			WillReturnRows(lockedRouteRows(3, 120, driverID))
		mock.ExpectQuery(sumConfirmed).
			WithArgs(routeID).
			WillReturnRows(confirmedRows(2))
		mock.ExpectRollback()

		booking, err := repo.Create(routeID, passengerID, 2)
		require.Error(t, err)
		assert.Nil(t, booking)

		var capErr *CapacityExceededError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 2, capErr.Requested)
		assert.Equal(t, 1, capErr.Remaining)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pending Requests May Exceed Capacity", func(t *testing.T) {
		// Only confirmed seats count: a second pending request for the
		// same seats is still accepted.
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(lockRouteQuery).
			WithArgs(routeID).
			WillReturnRows(lockedRouteRows(3, 120, driverID))
		mock.ExpectQuery(sumConfirmed).
			WithArgs(routeID).
			WillReturnRows(confirmedRows(0))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectCommit()

		booking, err := repo.Create(routeID, passengerID, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, booking.SeatsBooked)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockRouteQuery).
			WithArgs(routeID).
			WillReturnError(fmt.Errorf("connection reset"))
		mock.ExpectRollback()

		booking, err := repo.Create(routeID, passengerID, 1)
		assert.Error(t, err)
		assert.Nil(t, booking)
		assert.Contains(t, err.Error(), "failed to lock route")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApproveBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	bookingID := uuid.New().String()
	routeID := uuid.New().String()
	passengerID := uuid.New().String()
	driverID := uuid.New().String()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "pending", driverID, 3))
		mock.ExpectQuery(sumConfirmed).
			WithArgs(routeID).
			WillReturnRows(confirmedRows(0))
		mock.ExpectExec(`UPDATE bookings SET status = 'confirmed'`).
			WithArgs(bookingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		booking, err := repo.Approve(bookingID, driverID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", string(booking.Status))
		assert.Equal(t, 2, booking.SeatsBooked)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wrong Driver", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "pending", driverID, 3))
		mock.ExpectRollback()

		booking, err := repo.Approve(bookingID, uuid.New().String())
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Pending", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "rejected", driverID, 3))
		mock.ExpectRollback()

		booking, err := repo.Approve(bookingID, driverID)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("First Come First Served", func(t *testing.T) {
		// Capacity 3 with 2 seats already confirmed: approving another
		// 2-seat request must fail even though it was accepted at
		// creation time.
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "pending", driverID, 3))
		mock.ExpectQuery(sumConfirmed).
			WithArgs(routeID).
			WillReturnRows(confirmedRows(2))
		mock.ExpectRollback()

		booking, err := repo.Approve(bookingID, driverID)
		require.Error(t, err)
		assert.Nil(t, booking)

		var capErr *CapacityExceededError
		require.ErrorAs(t, err, &capErr)
		assert.Equal(t, 1, capErr.Remaining)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Booking Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		booking, err := repo.Approve(bookingID, driverID)
		assert.ErrorIs(t, err, ErrBookingNotFound)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRejectBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	bookingID := uuid.New().String()
	routeID := uuid.New().String()
	passengerID := uuid.New().String()
	driverID := uuid.New().String()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "pending", driverID, 3))
		mock.ExpectExec(`UPDATE bookings SET status = 'rejected'`).
			WithArgs(bookingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		booking, err := repo.Reject(bookingID, driverID)
		require.NoError(t, err)
		assert.Equal(t, "rejected", string(booking.Status))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Confirmed", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "confirmed", driverID, 3))
		mock.ExpectRollback()

		booking, err := repo.Reject(bookingID, driverID)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelBooking(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	bookingID := uuid.New().String()
	routeID := uuid.New().String()
	passengerID := uuid.New().String()
	driverID := uuid.New().String()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "confirmed", driverID, 3))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "Bilen er gået i stykker").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		booking, gotDriver, err := repo.Cancel(bookingID, passengerID, "Bilen er gået i stykker")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", string(booking.Status))
		require.NotNil(t, booking.CancellationReason)
		assert.Equal(t, "Bilen er gået i stykker", *booking.CancellationReason)
		assert.Equal(t, driverID, gotDriver)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Owner", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "pending", driverID, 3))
		mock.ExpectRollback()

		_, _, err := repo.Cancel(bookingID, uuid.New().String(), "reason")
		assert.ErrorIs(t, err, ErrForbidden)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "cancelled", driverID, 3))
		mock.ExpectRollback()

		_, _, err := repo.Cancel(bookingID, passengerID, "again")
		assert.ErrorIs(t, err, ErrAlreadyCancelled)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejected Is Terminal", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(lockBookingQuery).
			WithArgs(bookingID).
			WillReturnRows(lockedBookingRows(bookingID, routeID, passengerID, 2, 240, "rejected", driverID, 3))
		mock.ExpectRollback()

		_, _, err := repo.Cancel(bookingID, passengerID, "too late")
		assert.ErrorIs(t, err, ErrInvalidStateTransition)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRemainingSeats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	routeID := uuid.New().String()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT r.seat_capacity - COALESCE`).
			WithArgs(routeID).
			WillReturnRows(sqlmock.NewRows([]string{"remaining"}).AddRow(1))

		remaining, err := repo.RemainingSeats(routeID)
		require.NoError(t, err)
		assert.Equal(t, 1, remaining)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Route Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT r.seat_capacity - COALESCE`).
			WithArgs(routeID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.RemainingSeats(routeID)
		assert.ErrorIs(t, err, ErrRouteNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCapacityExceededErrorMessage(t *testing.T) {
	err := &CapacityExceededError{Requested: 4, Remaining: 1}
	assert.Equal(t, "only 1 seats remain, 4 requested", err.Error())
	assert.False(t, errors.Is(err, ErrRouteNotFound))
}
