package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kaumahan/harvest-market-api/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	SetApproval(ctx context.Context, id uuid.UUID, approved, active bool) error
	ListPendingSellers(ctx context.Context) ([]model.Account, error)
	ApproveAllPendingSellers(ctx context.Context) (int64, error)
}

type pgAccountRepo struct{ pool *pgxpool.Pool }

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &pgAccountRepo{pool: pool}
}

const accountColumns = `id, email, password_hash, full_name, phone_number, address,
	shipping_address, role, business_name, business_permit_key, latitude, longitude,
	is_approved, is_staff, is_active, created_at, updated_at`

func nullDecimal(p *decimal.Decimal) decimal.NullDecimal {
	if p == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *p, Valid: true}
}

func decimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := n.Decimal
	return &d
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	a := &model.Account{}
	var lat, lng decimal.NullDecimal
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FullName, &a.PhoneNumber, &a.Address,
		&a.ShippingAddress, &a.Role, &a.BusinessName, &a.BusinessPermitKey, &lat, &lng,
		&a.IsApproved, &a.IsStaff, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Latitude = decimalPtr(lat)
	a.Longitude = decimalPtr(lng)
	return a, nil
}

func (r *pgAccountRepo) Create(ctx context.Context, account *model.Account) error {
	account.ID = uuid.New()
	query := `INSERT INTO accounts (id, email, password_hash, full_name, phone_number, address,
				shipping_address, role, business_name, business_permit_key, latitude, longitude,
				is_approved, is_staff, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.FullName, account.PhoneNumber,
		account.Address, account.ShippingAddress, account.Role, account.BusinessName,
		account.BusinessPermitKey, nullDecimal(account.Latitude), nullDecimal(account.Longitude),
		account.IsApproved, account.IsStaff, account.IsActive,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *pgAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepo) SetApproval(ctx context.Context, id uuid.UUID, approved, active bool) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE accounts SET is_approved = $2, is_active = $3, updated_at = NOW() WHERE id = $1`,
		id, approved, active,
	)
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgAccountRepo) ListPendingSellers(ctx context.Context) ([]model.Account, error) {
	query := `SELECT ` + accountColumns + `
			  FROM accounts
			  WHERE role = 'seller' AND is_approved = FALSE AND is_active = TRUE
			  ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending sellers: %w", err)
	}
	defer rows.Close()

	var sellers []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending seller: %w", err)
		}
		sellers = append(sellers, *account)
	}
	return sellers, rows.Err()
}

func (r *pgAccountRepo) ApproveAllPendingSellers(ctx context.Context) (int64, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE accounts SET is_approved = TRUE, updated_at = NOW()
		 WHERE role = 'seller' AND is_approved = FALSE AND is_active = TRUE`,
	)
	if err != nil {
		return 0, fmt.Errorf("approve all pending sellers: %w", err)
	}
	return ct.RowsAffected(), nil
}
