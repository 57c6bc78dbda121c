package pgdb

import (
	"context"

	"artbid-api/internal/entity"
	"artbid-api/pkg/postgres"

	"github.com/google/uuid"
)

type CommentRepo struct {
	*postgres.Postgres
}

func NewCommentRepo(pgdb *postgres.Postgres) *CommentRepo {
	return &CommentRepo{pgdb}
}

func (r *CommentRepo) CreateComment(ctx context.Context, comment *entity.Comment) (uuid.UUID, error) {
	sqlReq, args, err := r.SqlBuilder.
		Insert("comment").
		Columns("auction_id", "author_id", "content", "created_at").
		Values(comment.AuctionId, comment.AuthorId, comment.Content, comment.CreatedAt).
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

func (r *CommentRepo) GetAuctionComments(ctx context.Context, auctionId uuid.UUID, pg *entity.PaginationInput) ([]entity.Comment, error) {
	builder := r.SqlBuilder.
		Select("comment.id, comment.auction_id, comment.author_id, app_user.username, comment.content, comment.created_at").
		From("comment").
		InnerJoin("app_user ON app_user.id = comment.author_id").
		Where("comment.auction_id = ?", auctionId).
		OrderBy("comment.created_at ASC")
	builder = paginate(builder, pg)

	sqlReq, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Database.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]entity.Comment, 0)
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.Id, &c.AuctionId, &c.AuthorId, &c.AuthorUsername, &c.Content, &c.CreatedAt); err != nil {
			return comments, err
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return comments, err
	}

	return comments, nil
}
