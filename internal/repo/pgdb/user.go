package pgdb

import (
	"context"

	"artbid-api/internal/entity"
	"artbid-api/internal/repo/repo_errors"
	"artbid-api/pkg/postgres"

	"github.com/google/uuid"
)

const userColumns = "id, username, email, name, about, profile_image, password_hash, security_question, security_answer_hash, created_at"

type UserRepo struct {
	*postgres.Postgres
}

func NewUserRepo(pgdb *postgres.Postgres) *UserRepo {
	return &UserRepo{pgdb}
}

func scanUser(row rowScanner) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.Id, &u.Username, &u.Email, &u.Name, &u.About, &u.ProfileImage,
		&u.PasswordHash, &u.SecurityQuestion, &u.SecurityAnswerHash, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	return &u, nil
}

func (r *UserRepo) CreateUser(ctx context.Context, user *entity.User) (uuid.UUID, error) {
	sqlReq, args, err := r.SqlBuilder.
		Insert("app_user").
		Columns("username", "email", "name", "about", "profile_image", "password_hash", "security_question", "security_answer_hash", "created_at").
		Values(user.Username, user.Email, user.Name, user.About, user.ProfileImage,
			user.PasswordHash, user.SecurityQuestion, user.SecurityAnswerHash, user.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	if err := r.Database.QueryRowContext(ctx, sqlReq, args...).Scan(&id); err != nil {
		return uuid.Nil, mapError(err)
	}

	return id, nil
}

func (r *UserRepo) GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	sqlReq, args, err := r.SqlBuilder.
		Select(userColumns).
		From("app_user").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	return scanUser(r.Database.QueryRowContext(ctx, sqlReq, args...))
}

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	sqlReq, args, err := r.SqlBuilder.
		Select(userColumns).
		From("app_user").
		Where("username = ?", username).
		ToSql()
	if err != nil {
		return nil, err
	}

	return scanUser(r.Database.QueryRowContext(ctx, sqlReq, args...))
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, input *entity.UpdateProfileInput) error {
	sqlReq, args, err := r.SqlBuilder.
		Update("app_user").
		Set("name", input.Name).
		Set("email", input.Email).
		Set("about", input.About).
		Set("profile_image", input.ProfileImage).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return err
	}

	return r.execOne(ctx, sqlReq, args)
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	sqlReq, args, err := r.SqlBuilder.
		Update("app_user").
		Set("password_hash", passwordHash).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return err
	}

	return r.execOne(ctx, sqlReq, args)
}

func (r *UserRepo) execOne(ctx context.Context, sqlReq string, args []any) error {
	res, err := r.Database.ExecContext(ctx, sqlReq, args...)
	if err != nil {
		return mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}
