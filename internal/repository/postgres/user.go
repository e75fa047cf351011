package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const userColumns = `id, username, first_name, last_name, email, role, specialty,
	is_active, password_hash, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (err error) {
	defer r.track("user_create")(&err)

	if user.CreatedAt.IsZero() {
		user.CreatedAt = utcNow()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if user.ID > 0 {
			query := `
				INSERT INTO users (` + userColumns + `)
				VALUES (:id, :username, :first_name, :last_name, :email, :role, :specialty,
					:is_active, :password_hash, :created_at, :updated_at)
			`
			if _, err := tx.NamedExecContext(ctx, query, user); err != nil {
				return translate(err)
			}
			return syncSequence(ctx, tx, "users")
		}

		query := `
			INSERT INTO users (username, first_name, last_name, email, role, specialty,
				is_active, password_hash, created_at, updated_at)
			VALUES (:username, :first_name, :last_name, :email, :role, :specialty,
				:is_active, :password_hash, :created_at, :updated_at)
			RETURNING id
		`
		return insertReturningID(ctx, tx, query, user, &user.ID)
	})
}

func (r *userRepository) Get(ctx context.Context, id int64) (_ *model.User, err error) {
	defer r.track("user_get")(&err)

	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err = translate(r.conn(ctx).GetContext(ctx, &user, query, id)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (_ *model.User, err error) {
	defer r.track("user_get_by_username")(&err)

	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	if err = translate(r.conn(ctx).GetContext(ctx, &user, query, username)); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) (err error) {
	defer r.track("user_update")(&err)

	query := `
		UPDATE users SET
			username = :username,
			first_name = :first_name,
			last_name = :last_name,
			email = :email,
			role = :role,
			specialty = :specialty,
			is_active = :is_active,
			password_hash = :password_hash,
			updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.conn(ctx).NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translate(err))
	}
	return requireRow(res)
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter) (_ []*model.User, err error) {
	defer r.track("user_list")(&err)

	var (
		where []string
		args  []interface{}
	)
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.ActiveOnly {
		where = append(where, "is_active")
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		where = append(where, "(TRIM(first_name || ' ' || last_name) ILIKE ? OR username ILIKE ?)")
		like := "%" + escapeLike(q) + "%"
		args = append(args, like, like)
	}

	query := `SELECT ` + userColumns + ` FROM users` + whereClause(where) + ` ORDER BY id`

	users := make([]*model.User, 0)
	if err = r.conn(ctx).SelectContext(ctx, &users, r.conn(ctx).Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
