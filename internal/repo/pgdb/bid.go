package pgdb

import (
	"context"
	"errors"

	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/repo/repo_errors"
	"artbid-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type BidRepo struct {
	*postgres.Postgres
}

func NewBidRepo(pgdb *postgres.Postgres) *BidRepo {
	return &BidRepo{pgdb}
}

// AcceptBid runs the conditional leader update and the ledger insert in one
// transaction. The UPDATE takes the row lock, so concurrent bids on the same
// auction are applied one after another and each re-checks the price it has
// to beat. Sequence numbers come from bid_count and timestamps never go
// backwards within an auction.
func (r *BidRepo) AcceptBid(ctx context.Context, input *entity.AcceptBidInput) (*entity.Bid, error) {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	updateLeaderSql, args, _ := r.SqlBuilder.
		Update("auction").
		Set("leading_amount", input.Amount).
		Set("leader_id", input.BidderId).
		Set("bid_count", squirrel.Expr("bid_count + 1")).
		Set("last_bid_at", squirrel.Expr("GREATEST(COALESCE(last_bid_at, ?), ?)", input.At, input.At)).
		Set("updated_at", input.At).
		Where("id = ?", input.AuctionId).
		Where("status = ?", common.InProgress.String()).
		Where("start_at <= ?", input.At).
		Where("end_at > ?", input.At).
		Where("COALESCE(leading_amount, min_bid) < ?", input.Amount).
		Suffix("RETURNING bid_count, last_bid_at").
		ToSql()

	bid := entity.Bid{
		AuctionId: input.AuctionId,
		BidderId:  input.BidderId,
		Amount:    input.Amount,
	}
	err = tx.QueryRowContext(ctx, updateLeaderSql, args...).Scan(&bid.Seq, &bid.CreatedAt)
	if err != nil {
		if errors.Is(mapError(err), repo_errors.ErrNotFound) {
			return nil, rollback(tx, repo_errors.ErrConditionFailed)
		}

		return nil, rollback(tx, err)
	}

	appendSql, args, _ := r.SqlBuilder.
		Insert("bid").
		Columns("auction_id", "bidder_id", "amount", "seq", "created_at").
		Values(bid.AuctionId, bid.BidderId, bid.Amount, bid.Seq, bid.CreatedAt).
		Suffix("RETURNING id").
		ToSql()

	if err = tx.QueryRowContext(ctx, appendSql, args...).Scan(&bid.Id); err != nil {
		return nil, rollback(tx, mapError(err))
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &bid, nil
}

func (r *BidRepo) GetAuctionBids(ctx context.Context, auctionId uuid.UUID) ([]entity.LedgerEntry, error) {
	sqlReq, args, err := r.SqlBuilder.
		Select("bid.id, bid.auction_id, bid.bidder_id, bid.amount, bid.seq, bid.created_at, app_user.username").
		From("bid").
		InnerJoin("app_user ON app_user.id = bid.bidder_id").
		Where("bid.auction_id = ?", auctionId).
		OrderBy("bid.seq ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Database.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]entity.LedgerEntry, 0)
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.Id, &e.AuctionId, &e.BidderId, &e.Amount, &e.Seq, &e.CreatedAt, &e.BidderUsername); err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return entries, err
	}

	return entries, nil
}

func (r *BidRepo) GetHighestBid(ctx context.Context, auctionId uuid.UUID) (*entity.Bid, error) {
	sqlReq, args, err := r.SqlBuilder.
		Select("id, auction_id, bidder_id, amount, seq, created_at").
		From("bid").
		Where("auction_id = ?", auctionId).
		OrderBy("amount DESC", "seq DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var b entity.Bid
	err = r.Database.QueryRowContext(ctx, sqlReq, args...).
		Scan(&b.Id, &b.AuctionId, &b.BidderId, &b.Amount, &b.Seq, &b.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	return &b, nil
}
