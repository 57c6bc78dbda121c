package pgdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"artbid-api/internal/entity"
	"artbid-api/internal/repo/repo_errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var leaderUpdatePattern = sqlPattern(
	"UPDATE auction SET leading_amount = $1, leader_id = $2, bid_count = bid_count + 1",
	"last_bid_at = GREATEST(COALESCE(last_bid_at, $3), $4), updated_at = $5",
	"WHERE id = $6 AND status = $7 AND start_at <= $8 AND end_at > $9",
	"AND COALESCE(leading_amount, min_bid) < $10",
	"RETURNING bid_count, last_bid_at",
)

var appendBidPattern = sqlPattern(
	"INSERT INTO bid (auction_id,bidder_id,amount,seq,created_at) VALUES ($1,$2,$3,$4,$5)",
	"RETURNING id",
)

func newAcceptBidInput() *entity.AcceptBidInput {
	return &entity.AcceptBidInput{
		AuctionId: uuid.MustParse("7b0e5c2a-43a1-4d7e-9a0b-1f9f3c1d2e01"),
		BidderId:  uuid.MustParse("0c8d3f6e-5b2a-4f1c-8e7d-6a5b4c3d2e02"),
		Amount:    decimal.RequireFromString("150.50"),
		At:        time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
	}
}

func expectLeaderUpdate(mock sqlmock.Sqlmock, input *entity.AcceptBidInput) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(leaderUpdatePattern).WithArgs(
		input.Amount, input.BidderId, input.At, input.At, input.At,
		input.AuctionId, "in-progress", input.At, input.At, input.Amount,
	)
}

func TestBidRepo_AcceptBid(t *testing.T) {
	pg, mock := newMockPostgres(t)
	input := newAcceptBidInput()
	lastBidAt := input.At.Add(time.Second)
	bidId := uuid.New()

	mock.ExpectBegin()
	expectLeaderUpdate(mock, input).
		WillReturnRows(sqlmock.NewRows([]string{"bid_count", "last_bid_at"}).AddRow(3, lastBidAt))
	mock.ExpectQuery(appendBidPattern).
		WithArgs(input.AuctionId, input.BidderId, input.Amount, 3, lastBidAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(bidId.String()))
	mock.ExpectCommit()

	bid, err := NewBidRepo(pg).AcceptBid(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, bidId, bid.Id)
	assert.Equal(t, 3, bid.Seq)
	assert.True(t, bid.CreatedAt.Equal(lastBidAt))
	assert.True(t, bid.Amount.Equal(input.Amount))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepo_AcceptBid_ConditionFailed(t *testing.T) {
	pg, mock := newMockPostgres(t)
	input := newAcceptBidInput()

	mock.ExpectBegin()
	expectLeaderUpdate(mock, input).
		WillReturnRows(sqlmock.NewRows([]string{"bid_count", "last_bid_at"}))
	mock.ExpectRollback()

	bid, err := NewBidRepo(pg).AcceptBid(context.Background(), input)
	assert.Nil(t, bid)
	assert.ErrorIs(t, err, repo_errors.ErrConditionFailed)

	// no ledger row is written for a rejected bid
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepo_AcceptBid_AppendFails(t *testing.T) {
	pg, mock := newMockPostgres(t)
	input := newAcceptBidInput()
	insertErr := errors.New("connection reset")

	mock.ExpectBegin()
	expectLeaderUpdate(mock, input).
		WillReturnRows(sqlmock.NewRows([]string{"bid_count", "last_bid_at"}).AddRow(1, input.At))
	mock.ExpectQuery(appendBidPattern).WillReturnError(insertErr)
	mock.ExpectRollback()

	_, err := NewBidRepo(pg).AcceptBid(context.Background(), input)
	assert.ErrorIs(t, err, insertErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBidRepo_AcceptBid_UpdateFails(t *testing.T) {
	pg, mock := newMockPostgres(t)
	input := newAcceptBidInput()
	updateErr := errors.New("deadlock detected")

	mock.ExpectBegin()
	expectLeaderUpdate(mock, input).WillReturnError(updateErr)
	mock.ExpectRollback()

	_, err := NewBidRepo(pg).AcceptBid(context.Background(), input)
	assert.ErrorIs(t, err, updateErr)
	assert.NotErrorIs(t, err, repo_errors.ErrConditionFailed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
