package pgdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/repo/repo_errors"
	"artbid-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const auctionColumns = "auction.id, auction.title, auction.description, auction.image, auction.owner_id, " +
	"auction.min_bid, auction.leading_amount, auction.leader_id, auction.start_at, auction.end_at, " +
	"auction.status, auction.bid_count, auction.last_bid_at, auction.created_at, auction.updated_at"

type AuctionRepo struct {
	*postgres.Postgres
}

func NewAuctionRepo(pgdb *postgres.Postgres) *AuctionRepo {
	return &AuctionRepo{pgdb}
}

func scanAuction(row rowScanner, extra ...any) (*entity.Auction, error) {
	var (
		a             entity.Auction
		status        string
		leadingAmount decimal.NullDecimal
		leaderId      uuid.NullUUID
		lastBidAt     sql.NullTime
	)

	dest := []any{&a.Id, &a.Title, &a.Description, &a.Image, &a.OwnerId,
		&a.MinBid, &leadingAmount, &leaderId, &a.StartAt, &a.EndAt,
		&status, &a.BidCount, &lastBidAt, &a.CreatedAt, &a.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapError(err)
	}

	a.Status = common.AuctionStatus(status)
	if !a.Status.IsValid() {
		return nil, fmt.Errorf("auction %s has unknown status %q", a.Id, status)
	}
	if leadingAmount.Valid && leaderId.Valid {
		a.Leader = &entity.Leader{BidderId: leaderId.UUID, Amount: leadingAmount.Decimal}
	}
	if lastBidAt.Valid {
		t := lastBidAt.Time
		a.LastBidAt = &t
	}

	return &a, nil
}

func (r *AuctionRepo) CreateAuction(ctx context.Context, auction *entity.Auction) (uuid.UUID, error) {
	sqlReq, args, err := r.SqlBuilder.
		Insert("auction").
		Columns("title", "description", "image", "owner_id", "min_bid", "start_at", "end_at", "status", "created_at", "updated_at").
		Values(auction.Title, auction.Description, auction.Image, auction.OwnerId, auction.MinBid,
			auction.StartAt, auction.EndAt, auction.Status.String(), auction.CreatedAt, auction.CreatedAt).
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

func (r *AuctionRepo) GetAuctionById(ctx context.Context, id uuid.UUID) (*entity.Auction, error) {
	sqlReq, args, err := r.SqlBuilder.
		Select(auctionColumns).
		From("auction").
		Where("auction.id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	return scanAuction(r.Database.QueryRowContext(ctx, sqlReq, args...))
}

func (r *AuctionRepo) GetAuctionsByStatuses(ctx context.Context, statuses []common.AuctionStatus) ([]entity.Auction, error) {
	sqlReq, args, err := r.SqlBuilder.
		Select(auctionColumns).
		From("auction").
		Where(squirrel.Eq{"auction.status": common.StatusStrings(statuses)}).
		OrderBy("auction.end_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Database.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := make([]entity.Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return auctions, err
		}
		auctions = append(auctions, *a)
	}
	if err = rows.Err(); err != nil {
		return auctions, err
	}

	return auctions, nil
}

func (r *AuctionRepo) FindAuctions(ctx context.Context, filter *entity.AuctionFilter, pg *entity.PaginationInput) ([]entity.AuctionListing, error) {
	builder := r.SqlBuilder.
		Select(auctionColumns + ", app_user.username, app_user.name").
		From("auction").
		InnerJoin("app_user ON app_user.id = auction.owner_id")

	if filter != nil {
		if len(filter.Statuses) > 0 {
			builder = builder.Where(squirrel.Eq{"auction.status": common.StatusStrings(filter.Statuses)})
		}
		if filter.OwnerId != nil {
			builder = builder.Where("auction.owner_id = ?", *filter.OwnerId)
		}
		if filter.OpenAt != nil {
			builder = builder.
				Where("auction.start_at <= ?", *filter.OpenAt).
				Where("auction.end_at > ?", *filter.OpenAt)
		}
	}

	builder = builder.OrderBy("auction.created_at DESC")
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

	listings := make([]entity.AuctionListing, 0)
	for rows.Next() {
		var listing entity.AuctionListing
		a, err := scanAuction(rows, &listing.OwnerUsername, &listing.OwnerName)
		if err != nil {
			return listings, err
		}
		listing.Auction = *a
		listings = append(listings, listing)
	}
	if err = rows.Err(); err != nil {
		return listings, err
	}

	return listings, nil
}

func (r *AuctionRepo) GetAuctionsByOwner(ctx context.Context, ownerId uuid.UUID, pg *entity.PaginationInput) ([]entity.AuctionListing, error) {
	return r.FindAuctions(ctx, &entity.AuctionFilter{OwnerId: &ownerId}, pg)
}

func (r *AuctionRepo) UpdateAuctionStatus(ctx context.Context, id uuid.UUID, from common.AuctionStatus, to common.AuctionStatus, at time.Time) (bool, error) {
	sqlReq, args, err := r.SqlBuilder.
		Update("auction").
		Set("status", to.String()).
		Set("updated_at", at).
		Where("id = ?", id).
		Where("status = ?", from.String()).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.Database.ExecContext(ctx, sqlReq, args...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (r *AuctionRepo) EditAuction(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, changes *entity.AuctionChanges) error {
	sqlReq, args, err := r.SqlBuilder.
		Update("auction").
		Set("title", changes.Title).
		Set("description", changes.Description).
		Set("image", changes.Image).
		Set("min_bid", changes.MinBid).
		Set("start_at", changes.StartAt).
		Set("end_at", changes.EndAt).
		Set("updated_at", changes.UpdatedAt).
		Where("id = ?", id).
		Where("owner_id = ?", ownerId).
		Where("status = ?", common.Active.String()).
		Where("bid_count = 0").
		Where("leader_id IS NULL").
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.Database.ExecContext(ctx, sqlReq, args...)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repo_errors.ErrConditionFailed
	}

	return nil
}

// SoftDeleteAuction returns the status the auction held before deletion.
func (r *AuctionRepo) SoftDeleteAuction(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, at time.Time) (common.AuctionStatus, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}

	lockSql, args, _ := r.SqlBuilder.
		Select("status", "owner_id").
		From("auction").
		Where("id = ?", id).
		Suffix("FOR UPDATE").
		ToSql()

	var (
		status  string
		ownerOf uuid.UUID
	)
	if err := tx.QueryRowContext(ctx, lockSql, args...).Scan(&status, &ownerOf); err != nil {
		return "", rollback(tx, mapError(err))
	}

	prev := common.AuctionStatus(status)
	if ownerOf != ownerId || !prev.CanTransitionTo(common.Deleted) {
		return "", rollback(tx, repo_errors.ErrConditionFailed)
	}

	deleteSql, args, _ := r.SqlBuilder.
		Update("auction").
		Set("status", common.Deleted.String()).
		Set("updated_at", at).
		Where("id = ?", id).
		ToSql()

	if _, err := tx.ExecContext(ctx, deleteSql, args...); err != nil {
		return "", rollback(tx, err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return prev, nil
}
