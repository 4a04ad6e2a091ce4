package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// ErrDuplicateUser is returned when the username or email is already taken
var ErrDuplicateUser = errors.New("username or email already taken")

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, phone, profile_picture_url, rating, created_at`

// Create inserts a new user
func (r *UserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	err := r.db.QueryRow(`
		INSERT INTO users (id, username, email, password_hash, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Phone,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID string) (*models.User, error) {
	user := &models.User{}
	err := r.db.Get(user, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive)
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.Get(user, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the mutable profile fields of a user
func (r *UserRepository) UpdateProfile(userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(`
		UPDATE users
		SET username = COALESCE($2, username),
		    phone = COALESCE($3, phone),
		    profile_picture_url = COALESCE($4, profile_picture_url)
		WHERE id = $1
		RETURNING `+userColumns,
		userID, req.Username, req.Phone, req.ProfilePictureURL,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Phone, &user.ProfilePictureURL, &user.Rating, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// GetPublicProfile retrieves the public view of a user together with the
// review aggregate
func (r *UserRepository) GetPublicProfile(userID string) (*models.PublicProfile, error) {
	profile := &models.PublicProfile{}
	var rating sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT u.id, u.username, u.profile_picture_url,
		       AVG(rv.rating), COUNT(rv.id)
		FROM users u
		LEFT JOIN reviews rv ON rv.reviewed_user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id`, userID,
	).Scan(&profile.ID, &profile.Username, &profile.ProfilePictureURL,
		&rating, &profile.ReviewCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get public profile: %w", err)
	}
	if rating.Valid {
		profile.Rating = &rating.Float64
	}

	return profile, nil
}
