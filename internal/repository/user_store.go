package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/parking-bay-reservation/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a unique
// constraint violation.
const mysqlDuplicateEntry = 1062

// CreateUser inserts a new user and populates the generated ID on
// the provided record.  Emails are normalised to lower case before
// insertion; a duplicate email is reported as ErrDuplicateEmail
// rather than the raw driver error.  Loyalty points start at zero.
func (q *queries) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	const ins = `INSERT INTO users (email, password_hash, full_name, phone_number, car_plate, loyalty_points, role)
	             VALUES (?, ?, ?, ?, ?, 0, ?)`
	res, err := q.db.ExecContext(ctx, ins,
		u.Email, u.PasswordHash, u.FullName, u.PhoneNumber, u.CarPlate, u.Role)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateEmail
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

const userColumns = `id, email, password_hash, full_name, phone_number, car_plate, loyalty_points, role, created_at, updated_at`

func (q *queries) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.PhoneNumber,
		&u.CarPlate, &u.LoyaltyPoints, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByEmail fetches a user by normalised email.
func (q *queries) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return q.scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
}

// UserByID fetches a user by id.
func (q *queries) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	return q.scanUser(q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// AddLoyaltyPoints applies an additive adjustment to the user's
// loyalty balance.  The WHERE clause refuses an update that would
// drive the balance negative, so a concurrent spend can never store
// a negative value; the follow-up lookup disambiguates a missing
// user from an insufficient balance.
func (q *queries) AddLoyaltyPoints(ctx context.Context, userID uint64, delta int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET loyalty_points = loyalty_points + ? WHERE id = ? AND loyalty_points + ? >= 0`,
		delta, userID, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := q.UserByID(ctx, userID); err != nil {
			return err // ErrNotFound or storage failure
		}
		return ErrInsufficientPoints
	}
	return nil
}
