package pgdb

import (
	"context"
	"time"

	"artbid-api/internal/entity"
	"artbid-api/pkg/postgres"

	"github.com/google/uuid"
)

const cartColumns = "cart_entry.id, cart_entry.user_id, cart_entry.auction_id, auction.title, " +
	"COALESCE(auction.leading_amount, auction.min_bid), cart_entry.created_at"

type CartRepo struct {
	*postgres.Postgres
}

func NewCartRepo(pgdb *postgres.Postgres) *CartRepo {
	return &CartRepo{pgdb}
}

func scanCartEntry(row rowScanner) (*entity.CartEntry, error) {
	var e entity.CartEntry
	if err := row.Scan(&e.Id, &e.UserId, &e.AuctionId, &e.AuctionTitle, &e.Amount, &e.CreatedAt); err != nil {
		return nil, mapError(err)
	}

	return &e, nil
}

func (r *CartRepo) AddCartEntry(ctx context.Context, userId uuid.UUID, auctionId uuid.UUID, at time.Time) (uuid.UUID, error) {
	sqlReq, args, err := r.SqlBuilder.
		Insert("cart_entry").
		Columns("user_id", "auction_id", "created_at").
		Values(userId, auctionId, at).
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

func (r *CartRepo) GetUserCart(ctx context.Context, userId uuid.UUID, pg *entity.PaginationInput) ([]entity.CartEntry, error) {
	builder := r.SqlBuilder.
		Select(cartColumns).
		From("cart_entry").
		InnerJoin("auction ON auction.id = cart_entry.auction_id").
		Where("cart_entry.user_id = ?", userId).
		OrderBy("cart_entry.created_at DESC")
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

	entries := make([]entity.CartEntry, 0)
	for rows.Next() {
		e, err := scanCartEntry(rows)
		if err != nil {
			return entries, err
		}
		entries = append(entries, *e)
	}
	if err = rows.Err(); err != nil {
		return entries, err
	}

	return entries, nil
}

func (r *CartRepo) GetLatestCartEntry(ctx context.Context, userId uuid.UUID, auctionId uuid.UUID) (*entity.CartEntry, error) {
	sqlReq, args, err := r.SqlBuilder.
		Select(cartColumns).
		From("cart_entry").
		InnerJoin("auction ON auction.id = cart_entry.auction_id").
		Where("cart_entry.user_id = ?", userId).
		Where("cart_entry.auction_id = ?", auctionId).
		OrderBy("cart_entry.created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	return scanCartEntry(r.Database.QueryRowContext(ctx, sqlReq, args...))
}
