// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"receipt-tracker/internal/domain"
	"receipt-tracker/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// === UserStorage ===

const userColumns = "id, username, email, password_hash, role, avatar, budget, default_currency, created_at, updated_at"

func (s *Storage) CreateUser(ctx context.Context, u *domain.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, avatar, budget, default_currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Avatar, u.Budget, u.DefaultCurrency, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "email = $1", email)
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*domain.User, error) {
	row := s.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Storage) UpdateUser(ctx context.Context, u *domain.User) error {
	u.UpdatedAt = time.Now()
	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET username = $2, email = $3, avatar = $4, budget = $5, default_currency = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.Username, u.Email, u.Avatar, u.Budget, u.DefaultCurrency, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return storage.ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	tag, err := s.db.Exec(ctx, "UPDATE users SET role = $2, updated_at = $3 WHERE id = $1", id, role, time.Now())
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteUsersExcept(ctx context.Context, keepID string) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id <> $1", keepID)
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar,
		&u.Budget, &u.DefaultCurrency, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// === ReceiptStorage ===

const receiptColumns = "r.id, r.title, r.merchant, r.amount, r.currency, r.category, r.date, " +
	"r.description, r.payment_method, r.image_url, r.tags, r.status, r.liked_by, r.user_id, r.created_at, r.updated_at"

func (s *Storage) CreateReceipt(ctx context.Context, r *domain.Receipt) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	_, err := s.db.Exec(ctx, `
		INSERT INTO receipts (id, title, merchant, amount, currency, category, date, description,
		                      payment_method, image_url, tags, status, liked_by, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, r.ID, r.Title, r.Merchant, r.Amount, r.Currency, r.Category, r.Date, r.Description,
		r.PaymentMethod, r.ImageURL, r.Tags, r.Status, r.LikedBy, r.UserID, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create receipt: %w", err)
	}
	return nil
}

func (s *Storage) GetReceiptByID(ctx context.Context, id string) (*domain.Receipt, error) {
	row := s.db.QueryRow(ctx, "SELECT "+receiptColumns+" FROM receipts r WHERE r.id = $1", id)
	r, err := scanReceipt(row, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return r, nil
}

func (s *Storage) ListReceipts(ctx context.Context, ownerID string, f storage.ReceiptFilter, withOwner bool) ([]domain.Receipt, error) {
	columns := receiptColumns
	join := ""
	if withOwner {
		columns += ", u.username, u.email"
		join = " LEFT JOIN users u ON u.id = r.user_id"
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if ownerID != "" {
		conds = append(conds, "r.user_id = "+arg(ownerID))
	}
	if f.Category != "" {
		conds = append(conds, "r.category = "+arg(f.Category))
	}
	if f.StartDate != nil {
		conds = append(conds, "r.date >= "+arg(*f.StartDate))
	}
	if f.EndDate != nil {
		conds = append(conds, "r.date <= "+arg(*f.EndDate))
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, "(r.title ILIKE "+p+" OR r.merchant ILIKE "+p+")")
	}

	query := "SELECT " + columns + " FROM receipts r" + join
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.date DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []domain.Receipt{}
	for rows.Next() {
		r, err := scanReceipt(rows, withOwner)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, *r)
	}
	return receipts, rows.Err()
}

func (s *Storage) UpdateReceipt(ctx context.Context, r *domain.Receipt) error {
	r.UpdatedAt = time.Now()
	// user_id намеренно не обновляется: владелец неизменяем
	tag, err := s.db.Exec(ctx, `
		UPDATE receipts
		SET title = $2, merchant = $3, amount = $4, currency = $5, category = $6, date = $7,
		    description = $8, payment_method = $9, image_url = $10, tags = $11, status = $12, updated_at = $13
		WHERE id = $1
	`, r.ID, r.Title, r.Merchant, r.Amount, r.Currency, r.Category, r.Date,
		r.Description, r.PaymentMethod, r.ImageURL, r.Tags, r.Status, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) UpdateLikes(ctx context.Context, id string, likedBy []string) error {
	tag, err := s.db.Exec(ctx, "UPDATE receipts SET liked_by = $2, updated_at = $3 WHERE id = $1", id, likedBy, time.Now())
	if err != nil {
		return fmt.Errorf("update likes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteReceipt(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM receipts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Storage) DeleteReceiptsByUser(ctx context.Context, userID string) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM receipts WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("delete receipts by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Storage) DeleteReceiptsExceptUser(ctx context.Context, keepID string) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM receipts WHERE user_id <> $1", keepID)
	if err != nil {
		return 0, fmt.Errorf("delete receipts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanReceipt(row pgx.Row, withOwner bool) (*domain.Receipt, error) {
	var r domain.Receipt
	dest := []any{&r.ID, &r.Title, &r.Merchant, &r.Amount, &r.Currency, &r.Category, &r.Date,
		&r.Description, &r.PaymentMethod, &r.ImageURL, &r.Tags, &r.Status, &r.LikedBy, &r.UserID,
		&r.CreatedAt, &r.UpdatedAt}

	var ownerName, ownerEmail *string
	if withOwner {
		dest = append(dest, &ownerName, &ownerEmail)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if withOwner && ownerName != nil && ownerEmail != nil {
		r.Owner = &domain.OwnerInfo{Username: *ownerName, Email: *ownerEmail}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.LikedBy == nil {
		r.LikedBy = []string{}
	}
	return &r, nil
}
