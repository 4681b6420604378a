package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"

	"github.com/xxxsen/otpauth/internal/model"
	"github.com/xxxsen/otpauth/internal/pkg/dbutil"
	appErr "github.com/xxxsen/otpauth/internal/pkg/errors"
)

const pendingTable = "pending_registrations"

var pendingColumns = []string{"email", "name", "password_hash", "otp_code", "expires_at", "ctime"}

type PendingRegistrationRepo struct {
	db *sqlx.DB
}

func NewPendingRegistrationRepo(db *sqlx.DB) *PendingRegistrationRepo {
	return &PendingRegistrationRepo{db: db}
}

func (r *PendingRegistrationRepo) Create(ctx context.Context, item *model.PendingRegistration) error {
	data := map[string]interface{}{
		"email":         item.Email,
		"name":          item.Name,
		"password_hash": item.PasswordHash,
		"otp_code":      item.OTPCode,
		"expires_at":    item.ExpiresAt,
		"ctime":         item.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert(pendingTable, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.db.DriverName(), sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *PendingRegistrationRepo) FindByEmail(ctx context.Context, email string) (*model.PendingRegistration, error) {
	sqlStr, args, err := builder.BuildSelect(pendingTable, map[string]interface{}{"email": email}, pendingColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.db.DriverName(), sqlStr, args)
	var item model.PendingRegistration
	if err := r.db.GetContext(ctx, &item, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *PendingRegistrationRepo) DeleteByEmail(ctx context.Context, email string) error {
	sqlStr, args, err := builder.BuildDelete(pendingTable, map[string]interface{}{"email": email})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(r.db.DriverName(), sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// DeleteExpiredBefore removes rows whose expiry is older than cutoff (unix seconds).
func (r *PendingRegistrationRepo) DeleteExpiredBefore(ctx context.Context, cutoff int64) (int64, error) {
	sqlStr, args, err := builder.BuildDelete(pendingTable, map[string]interface{}{"expires_at <": cutoff})
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(r.db.DriverName(), sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
