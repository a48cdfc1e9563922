package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/autumsam/postpilot/internal/models"
	"github.com/lib/pq"
)

// UserFilter narrows the admin user listing. Empty fields match everything.
type UserFilter struct {
	Role   string
	Status string
	Plan   string
	Search string
	Limit  int
	Offset int
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, bool, error)
	GetByEmail(ctx context.Context, email string) (*models.User, bool, error)
	Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter) ([]*models.User, error)
	UpdateRole(ctx context.Context, userID int64, role string) error
	UpdateStatus(ctx context.Context, userIDs []int64, status string) error
	UpdatePlan(ctx context.Context, userID int64, plan string) error
	TouchLastActive(ctx context.Context, userID int64) error
	Remove(ctx context.Context, id int64) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = "id, google_id, email, name, profile_picture, role, status, plan, last_active"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.GoogleID, &user.Email, &user.Name,
		&user.ProfilePicture, &user.Role, &user.Status, &user.Plan, &user.LastActive)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return user, true, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return user, true, nil
}

func (r *userRepository) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (google_id, email, name, profile_picture, role, status, plan, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	status := user.Status
	if status == "" {
		status = models.UserStatusActive
	}
	plan := user.Plan
	if plan == "" {
		plan = models.PlanFree
	}

	var err error
	var id int64

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, user.GoogleID, user.Email, user.Name, user.ProfilePicture, role, status, plan, time.Now()).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, user.GoogleID, user.Email, user.Name, user.ProfilePicture, role, status, plan, time.Now()).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET google_id = $1,
			name = $2,
			profile_picture = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, user.GoogleID, user.Name, user.ProfilePicture, time.Now(), user.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	var conditions []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Role != "" {
		add("role = $%d", filter.Role)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Plan != "" {
		add("plan = $%d", filter.Plan)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM users", userColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY last_active DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return users, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, userID int64, role string) error {
	query := `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, role, time.Now(), userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, userIDs []int64, status string) error {
	query := `UPDATE users SET status = $1, updated_at = $2 WHERE id = ANY($3)`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), pq.Array(userIDs))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userRepository) UpdatePlan(ctx context.Context, userID int64, plan string) error {
	query := `UPDATE users SET plan = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, plan, time.Now(), userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userRepository) TouchLastActive(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_active = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *userRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
