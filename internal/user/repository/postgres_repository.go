package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq" // Untuk pq.Error

	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/user/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserConflict = errors.New("user with this email or phone number already exists")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, email, phone_number, password_hash, is_admin, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`

	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	var phoneNumber sql.NullString
	if user.PhoneNumber != nil {
		phoneNumber = sql.NullString{String: *user.PhoneNumber, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, phoneNumber, user.PasswordHash, user.IsAdmin, user.CreatedAt, user.UpdatedAt).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// Kode error '23505' adalah unique_violation (email atau phone_number)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrUserConflict
		}
		logger.Error("CreateUser: failed to insert user", err)
		return err
	}
	return nil
}

func (r *postgresUserRepository) getUserBy(ctx context.Context, field, value string) (*domain.User, error) {
	query := `SELECT id, name, email, phone_number, password_hash, is_admin, created_at, updated_at
              FROM users WHERE ` + field + ` = $1`
	user := &domain.User{}
	var phoneNumber sql.NullString

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Name, &user.Email, &phoneNumber, &user.PasswordHash,
		&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Error("GetUserBy"+field+": query failed", err)
		return nil, err
	}
	if phoneNumber.Valid {
		user.PhoneNumber = &phoneNumber.String
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUserBy(ctx, "id", id)
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUserBy(ctx, "email", email)
}

func (r *postgresUserRepository) GetUserByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error) {
	return r.getUserBy(ctx, "phone_number", phoneNumber)
}

// GetUserByIdentifier mencari berdasarkan email dulu, lalu nomor telepon.
func (r *postgresUserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := r.GetUserByEmail(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	return r.GetUserByPhoneNumber(ctx, identifier)
}
