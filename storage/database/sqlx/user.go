package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/dmorais/escolar/core"
	"github.com/dmorais/escolar/core/user"
)

const userColumns = `id, name, COALESCE(username, '') AS username, COALESCE(email, '') AS email,
	is_active, roles, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// userRow carries the roles array through sqlx; user.User keeps a plain
// []string and is not scannable directly.
type userRow struct {
	user.User
	Roles pq.StringArray `db:"roles"`
}

func (row userRow) toUser() user.User {
	usr := row.User
	usr.Roles = row.Roles
	return usr
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	q := `SELECT COALESCE(username, ''), COALESCE(email, '') FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += " AND NOT (id = ANY($3))"
		args = append(args, pq.Array(ids))
	}

	rows, err := exe.QueryxContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var uname, mail string
		if err = rows.Scan(&uname, &mail); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if uname == username {
			return user.ErrUsernameExists
		}
		if mail == email {
			return user.ErrEmailExists
		}
	}
	return errors.Wrap(rows.Err(), "checking user uniqueness")
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := `
	INSERT INTO "user" (name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login)
	VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
	RETURNING id`
	now := time.Now().UTC()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt, usr.UpdatedAt = now, now
	}
	err := sqlx.GetContext(ctx, repo.getExec(exec), &usr.ID, q,
		usr.Name, usr.Username, usr.Email, usr.IsActive, pq.Array(usr.Roles),
		usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		return user.User{}, trapConflictErr(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, fmt.Sprintf(
				"(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", arg(val)))
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			roleConds := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roleConds = append(roleConds, fmt.Sprintf(
					"EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE %s)", arg(role+"%")))
			}
			conds = append(conds, "("+strings.Join(roleConds, " OR ")+")")
		}
		if filter.IsActive != nil {
			conds = append(conds, "is_active = "+arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			conds = append(conds, "created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			conds = append(conds, "created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}

	q := `SELECT ` + userColumns + ` FROM "user"`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering, "created_at DESC")

	var rows []userRow
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	q := `SELECT ` + userColumns + ` FROM "user" WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	q := `SELECT ` + userColumns + ` FROM "user" WHERE username = $1 OR email = $1`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q, username); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return row.toUser(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	q := `
	UPDATE "user"
	SET name          = COALESCE(NULLIF($2::text, ''), name),
	    username      = COALESCE(NULLIF($3::text, ''), username),
	    email         = COALESCE(NULLIF($4::text, ''), email),
	    is_active     = COALESCE($5::boolean, is_active),
	    roles         = CASE WHEN $6::text[] IS NULL THEN roles ELSE $6::text[] END,
	    password_hash = CASE WHEN $7::bytea IS NULL THEN password_hash ELSE $7::bytea END,
	    last_login    = CASE WHEN $8::timestamptz IS NULL THEN last_login ELSE $8::timestamptz END,
	    updated_at    = $9
	WHERE id = $1
	RETURNING ` + userColumns
	var roles interface{}
	if usr.Roles != nil {
		roles = pq.Array(usr.Roles)
	}
	var pwdHash interface{}
	if len(usr.PasswordHash) > 0 {
		pwdHash = usr.PasswordHash
	}
	var lastLogin interface{}
	if !usr.LastLogin.IsZero() {
		lastLogin = usr.LastLogin.UTC()
	}

	var row userRow
	err := sqlx.GetContext(ctx, repo.getExec(exec), &row, q,
		usr.ID, usr.Name, usr.Username, usr.Email, isActive, roles, pwdHash, lastLogin, time.Now().UTC(),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, trapConflictErr(err, "updating user")
	}
	return row.toUser(), nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == 0 {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return repo.UpdateUser(ctx, usr, nil, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	q := `DELETE FROM "user" WHERE id = ANY($1)`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
