package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// ReviewRepository handles database operations for the reviews table
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a new review. The (booking, reviewer) unique constraint
// rejects duplicates.
func (r *ReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}

	err := r.db.QueryRow(`
		INSERT INTO reviews (id, route_id, booking_id, reviewer_id, reviewed_user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		review.ID, review.RouteID, review.BookingID, review.ReviewerID,
		review.ReviewedUserID, review.Rating, review.Comment,
	).Scan(&review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateReview
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// ListByReviewedUser retrieves all reviews received by a user, newest first
func (r *ReviewRepository) ListByReviewedUser(userID string) ([]models.ReviewDetail, error) {
	query := `
		SELECT rv.id, rv.route_id, u.username AS reviewer_name, rv.rating, rv.comment,
		       sc.name AS start_city, ec.name AS end_city, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.reviewer_id
		JOIN routes r ON r.id = rv.route_id
		JOIN cities sc ON sc.id = r.start_city_id
		JOIN cities ec ON ec.id = r.end_city_id
		WHERE rv.reviewed_user_id = $1
		ORDER BY rv.created_at DESC
	`

	reviews := []models.ReviewDetail{}
	if err := r.db.Select(&reviews, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, nil
}
