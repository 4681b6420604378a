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

var accountColumns = []string{"id", "name", "email", "password_hash", "ctime", "mtime"}

type AccountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Create(ctx context.Context, account *model.Account) error {
	data := map[string]interface{}{
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"password_hash": account.PasswordHash,
		"ctime":         account.Ctime,
		"mtime":         account.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("accounts", []map[string]interface{}{data})
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

func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, map[string]interface{}{"email": email})
}

func (r *AccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return r.findOne(ctx, map[string]interface{}{"id": id})
}

func (r *AccountRepo) findOne(ctx context.Context, where map[string]interface{}) (*model.Account, error) {
	sqlStr, args, err := builder.BuildSelect("accounts", where, accountColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(r.db.DriverName(), sqlStr, args)
	var account model.Account
	if err := r.db.GetContext(ctx, &account, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}
