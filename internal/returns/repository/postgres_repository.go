package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Untuk pq.Error

	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/domain"
)

var (
	ErrReturnNotFound = errors.New("return request not found")
	ErrReturnConflict = errors.New("a return already exists for this order")
)

type ReturnRepository interface {
	Create(ctx context.Context, ret *domain.Return) error
	GetByID(ctx context.Context, id string) (*domain.Return, error)
	List(ctx context.Context) ([]domain.Return, error)
	UpdateStatus(ctx context.Context, id string, status domain.ReturnStatus, adminNotes string, processedDate *time.Time) error
	Delete(ctx context.Context, id string) error
}

type postgresReturnRepository struct {
	db *sql.DB
}

func NewPostgresReturnRepository(db *sql.DB) ReturnRepository {
	return &postgresReturnRepository{db: db}
}

func (r *postgresReturnRepository) Create(ctx context.Context, ret *domain.Return) error {
	query := `INSERT INTO returns (id, order_id, user_id, reason, return_method, bank_account_number, bank_ifsc_code, return_status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	ret.ID = uuid.NewString()
	ret.CreatedAt = time.Now()
	ret.UpdatedAt = ret.CreatedAt
	if ret.Status == "" {
		ret.Status = domain.ReturnPending
	}

	var accountNumber, ifscCode sql.NullString
	if ret.BankDetails != nil {
		accountNumber = sql.NullString{String: ret.BankDetails.AccountNumber, Valid: true}
		ifscCode = sql.NullString{String: ret.BankDetails.IFSCCode, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		ret.ID, ret.OrderID, ret.UserID, ret.Reason, ret.Method,
		accountNumber, ifscCode, ret.Status, ret.CreatedAt, ret.UpdatedAt)
	if err != nil {
		// Kode error '23505' adalah unique_violation (kolom order_id)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrReturnConflict
		}
		logger.Error("ReturnRepo.Create: failed to insert return", err)
		return err
	}
	return nil
}

const returnColumns = `id, order_id, user_id, reason, return_method, bank_account_number, bank_ifsc_code,
       return_status, admin_notes, return_processed_date, created_at, updated_at`

func scanReturn(row interface{ Scan(...interface{}) error }) (*domain.Return, error) {
	var ret domain.Return
	var accountNumber, ifscCode, adminNotes sql.NullString
	var processedDate sql.NullTime

	err := row.Scan(&ret.ID, &ret.OrderID, &ret.UserID, &ret.Reason, &ret.Method,
		&accountNumber, &ifscCode, &ret.Status, &adminNotes, &processedDate,
		&ret.CreatedAt, &ret.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if accountNumber.Valid {
		ret.BankDetails = &domain.BankDetails{AccountNumber: accountNumber.String, IFSCCode: ifscCode.String}
	}
	if adminNotes.Valid {
		ret.AdminNotes = adminNotes.String
	}
	if processedDate.Valid {
		ret.ProcessedDate = &processedDate.Time
	}
	return &ret, nil
}

func (r *postgresReturnRepository) GetByID(ctx context.Context, id string) (*domain.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`
	ret, err := scanReturn(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReturnNotFound
		}
		logger.Error("ReturnRepo.GetByID: query failed", err)
		return nil, err
	}
	return ret, nil
}

func (r *postgresReturnRepository) List(ctx context.Context) ([]domain.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ReturnRepo.List: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var returns []domain.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			logger.Error("ReturnRepo.List: scan failed", err)
			return nil, err
		}
		returns = append(returns, *ret)
	}
	return returns, rows.Err()
}

func (r *postgresReturnRepository) UpdateStatus(ctx context.Context, id string, status domain.ReturnStatus, adminNotes string, processedDate *time.Time) error {
	query := `UPDATE returns SET return_status = $1, admin_notes = $2, return_processed_date = $3, updated_at = NOW() WHERE id = $4`

	var processed sql.NullTime
	if processedDate != nil {
		processed = sql.NullTime{Time: *processedDate, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query, status, adminNotes, processed, id)
	if err != nil {
		logger.Error("ReturnRepo.UpdateStatus: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrReturnNotFound
	}
	return nil
}

func (r *postgresReturnRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM returns WHERE id = $1`, id)
	if err != nil {
		logger.Error("ReturnRepo.Delete: exec failed", err)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrReturnNotFound
	}
	return nil
}
