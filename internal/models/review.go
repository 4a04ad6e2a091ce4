package models

import (
	"errors"
	"time"
)

// Review is a post-trip rating of the counterparty on a confirmed booking.
// One review per (booking, reviewer).
type Review struct {
	ID             string    `json:"id" db:"id"`
	RouteID        string    `json:"route_id" db:"route_id"`
	BookingID      string    `json:"booking_id" db:"booking_id"`
	ReviewerID     string    `json:"reviewer_id" db:"reviewer_id"`
	ReviewedUserID string    `json:"reviewed_user_id" db:"reviewed_user_id"`
	Rating         int       `json:"rating" db:"rating"`
	Comment        string    `json:"comment" db:"comment"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ReviewDetail is a review joined with display names and route cities
type ReviewDetail struct {
	ID           string    `json:"id" db:"id"`
	RouteID      string    `json:"route_id" db:"route_id"`
	ReviewerName string    `json:"reviewer_name" db:"reviewer_name"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment" db:"comment"`
	StartCity    string    `json:"start_city" db:"start_city"`
	EndCity      string    `json:"end_city" db:"end_city"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CreateReviewRequest represents the request to review a completed trip
type CreateReviewRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

// Validate validates the create review request
func (r *CreateReviewRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}
