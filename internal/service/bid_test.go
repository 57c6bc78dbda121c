package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"artbid-api/internal/clock"
	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/metrics"
	"artbid-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bidFixture struct {
	store   *fakeStore
	clock   *clock.Manual
	events  *recordingPublisher
	metrics *metrics.MetricsManager
	svc     *BidService
	auction *entity.Auction
}

// newBidFixture opens an in-progress auction with min bid 100 whose window
// is [now-1h, now+1h).
func newBidFixture(t *testing.T) *bidFixture {
	t.Helper()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &bidFixture{
		store:   newFakeStore(),
		clock:   clock.NewManual(now),
		events:  &recordingPublisher{},
		metrics: metrics.NewMetricsManager("test"),
	}
	owner := f.store.addUser("owner")
	f.auction = f.store.addAuction(entity.Auction{
		OwnerId: owner.Id,
		MinBid:  decimal.NewFromInt(100),
		StartAt: now.Add(-time.Hour),
		EndAt:   now.Add(time.Hour),
		Status:  common.InProgress,
	})
	f.svc = NewBidService(Dependencies{
		Repos:   f.store.repos(),
		Clock:   f.clock,
		Events:  f.events,
		Metrics: f.metrics,
	})

	return f
}

func (f *bidFixture) bidder(username string) *entity.Identity {
	u := f.store.addUser(username)

	return &entity.Identity{UserId: u.Id, Username: u.Username}
}

func (f *bidFixture) submit(bidder *entity.Identity, amount int64) (*entity.BidOutputModel, error) {
	return f.svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
		AuctionId: f.auction.Id.String(),
		Bidder:    bidder,
		Amount:    decimal.NewFromInt(amount),
	})
}

func TestBidService_SubmitBid_AcceptThenTooLow(t *testing.T) {
	f := newBidFixture(t)
	u1, u2 := f.bidder("u1"), f.bidder("u2")

	out, err := f.submit(u1, 150)
	require.NoError(t, err)
	assert.Equal(t, "u1", out.BidderUsername)
	assert.Equal(t, 1, out.Seq)
	assert.True(t, decimal.NewFromInt(150).Equal(out.Amount))

	_, err = f.submit(u2, 120)
	require.ErrorIs(t, err, ErrBidTooLow)
	var tooLow *BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.True(t, decimal.NewFromInt(150).Equal(tooLow.MinimumToBeat))

	a := f.store.auction(f.auction.Id)
	require.NotNil(t, a.Leader)
	assert.Equal(t, u1.UserId, a.Leader.BidderId)
	assert.True(t, decimal.NewFromInt(150).Equal(a.Leader.Amount))
	assert.Len(t, f.store.ledger(f.auction.Id), 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BidsAcceptedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BidsRejectedTotal.WithLabelValues("bid_too_low")))

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, common.BidAcceptedEvent, events[0].Type)
	assert.Equal(t, u1.UserId, *events[0].BidderId)
}

func TestBidService_SubmitBid_EqualToMinimumRejected(t *testing.T) {
	f := newBidFixture(t)

	_, err := f.submit(f.bidder("u1"), 100)
	assert.ErrorIs(t, err, ErrBidTooLow)
	assert.Nil(t, f.store.auction(f.auction.Id).Leader)
}

func TestBidService_SubmitBid_CheckOrder(t *testing.T) {
	f := newBidFixture(t)
	bidder := f.bidder("u1")

	closed := f.store.addAuction(entity.Auction{
		OwnerId: uuid.New(),
		MinBid:  decimal.NewFromInt(100),
		StartAt: f.clock.Now().Add(time.Hour),
		EndAt:   f.clock.Now().Add(2 * time.Hour),
		Status:  common.Active,
	})

	tests := []struct {
		name      string
		auctionId string
		bidder    *entity.Identity
		amount    int64
		wantErr   error
	}{
		{
			name:      "malformed id",
			auctionId: "not-a-uuid",
			bidder:    nil,
			amount:    1,
			wantErr:   ErrAuctionNotFound,
		},
		{
			name:      "unknown auction beats missing bidder",
			auctionId: uuid.NewString(),
			bidder:    nil,
			amount:    1,
			wantErr:   ErrAuctionNotFound,
		},
		{
			name:      "missing bidder beats closed window",
			auctionId: closed.Id.String(),
			bidder:    nil,
			amount:    1,
			wantErr:   ErrUnauthorized,
		},
		{
			name:      "closed window beats low amount",
			auctionId: closed.Id.String(),
			bidder:    bidder,
			amount:    1,
			wantErr:   ErrWindowClosed,
		},
		{
			name:      "low amount",
			auctionId: f.auction.Id.String(),
			bidder:    bidder,
			amount:    1,
			wantErr:   ErrBidTooLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
				AuctionId: tt.auctionId,
				Bidder:    tt.bidder,
				Amount:    decimal.NewFromInt(tt.amount),
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBidService_SubmitBid_MonotonicLeader(t *testing.T) {
	f := newBidFixture(t)
	bidders := []*entity.Identity{f.bidder("a"), f.bidder("b"), f.bidder("c")}

	amounts := []int64{101, 99, 150, 150, 149, 151, 300, 200}
	best := f.auction.MinBid
	for i, amount := range amounts {
		_, err := f.submit(bidders[i%len(bidders)], amount)
		if decimal.NewFromInt(amount).GreaterThan(best) {
			require.NoError(t, err)
			best = decimal.NewFromInt(amount)
		} else {
			require.ErrorIs(t, err, ErrBidTooLow)
		}

		a := f.store.auction(f.auction.Id)
		require.NotNil(t, a.Leader)
		assert.True(t, best.Equal(a.Leader.Amount), "leader after bid %d", i)
	}

	ledger := f.store.ledger(f.auction.Id)
	require.Len(t, ledger, 4)
	for i := 1; i < len(ledger); i++ {
		assert.True(t, ledger[i].Amount.GreaterThan(ledger[i-1].Amount))
		assert.Equal(t, ledger[i-1].Seq+1, ledger[i].Seq)
	}
}

func TestBidService_SubmitBid_ConcurrentNoLostUpdate(t *testing.T) {
	f := newBidFixture(t)

	const n = 50
	bidders := make([]*entity.Identity, n)
	for i := range bidders {
		bidders[i] = f.bidder(uuid.NewString())
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []decimal.Decimal
		start    = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			amount := int64(101 + i)
			_, err := f.submit(bidders[i], amount)
			if err != nil {
				assert.ErrorIs(t, err, ErrBidTooLow)
				return
			}

			mu.Lock()
			accepted = append(accepted, decimal.NewFromInt(amount))
			mu.Unlock()
		}(i)
	}
	close(start)
	wg.Wait()

	a := f.store.auction(f.auction.Id)
	require.NotNil(t, a.Leader)
	assert.True(t, decimal.NewFromInt(100+n).Equal(a.Leader.Amount))
	assert.Equal(t, bidders[n-1].UserId, a.Leader.BidderId)

	ledger := f.store.ledger(f.auction.Id)
	require.Len(t, ledger, len(accepted))
	assert.Equal(t, len(accepted), a.BidCount)
	for i, bid := range ledger {
		assert.Equal(t, i+1, bid.Seq)
		if i > 0 {
			assert.True(t, bid.Amount.GreaterThan(ledger[i-1].Amount))
		}
	}
}

func TestBidService_SubmitBid_TwoRacingBids(t *testing.T) {
	for _, order := range [][]int64{{200, 201}, {201, 200}} {
		f := newBidFixture(t)
		_, err := f.submit(f.bidder("leader"), 150)
		require.NoError(t, err)

		for _, amount := range order {
			_, _ = f.submit(f.bidder(uuid.NewString()), amount)
		}

		a := f.store.auction(f.auction.Id)
		assert.True(t, decimal.NewFromInt(201).Equal(a.Leader.Amount), "order %v", order)

		ledger := f.store.ledger(f.auction.Id)
		assert.True(t, decimal.NewFromInt(201).Equal(ledger[len(ledger)-1].Amount))
	}
}

func TestBidService_SubmitBid_WindowEnforcement(t *testing.T) {
	f := newBidFixture(t)
	bidder := f.bidder("u1")
	now := f.clock.Now()

	tests := []struct {
		name    string
		status  common.AuctionStatus
		startAt time.Time
		endAt   time.Time
	}{
		{name: "active before start", status: common.Active, startAt: now.Add(time.Hour), endAt: now.Add(2 * time.Hour)},
		{name: "completed", status: common.Completed, startAt: now.Add(-2 * time.Hour), endAt: now.Add(-time.Hour)},
		{name: "expired", status: common.Expired, startAt: now.Add(-2 * time.Hour), endAt: now.Add(-time.Hour)},
		{name: "deleted", status: common.Deleted, startAt: now.Add(-time.Hour), endAt: now.Add(time.Hour)},
		{name: "in-progress but past end", status: common.InProgress, startAt: now.Add(-2 * time.Hour), endAt: now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := f.store.addAuction(entity.Auction{
				OwnerId: uuid.New(),
				MinBid:  decimal.NewFromInt(100),
				StartAt: tt.startAt,
				EndAt:   tt.endAt,
				Status:  tt.status,
			})

			_, err := f.svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
				AuctionId: a.Id.String(),
				Bidder:    bidder,
				Amount:    decimal.NewFromInt(500),
			})
			assert.ErrorIs(t, err, ErrWindowClosed)
			assert.Empty(t, f.store.ledger(a.Id))
		})
	}
}

func TestBidService_SubmitBid_OwnerCannotBid(t *testing.T) {
	f := newBidFixture(t)
	owner := &entity.Identity{UserId: f.auction.OwnerId, Username: "owner"}

	_, err := f.submit(owner, 150)
	assert.ErrorIs(t, err, ErrOwnBid)
	assert.Empty(t, f.store.ledger(f.auction.Id))
}

func TestBidService_SubmitBid_TooManyDecimals(t *testing.T) {
	f := newBidFixture(t)

	_, err := f.svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
		AuctionId: f.auction.Id.String(),
		Bidder:    f.bidder("u1"),
		Amount:    decimal.RequireFromString("150.005"),
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestBidService_SubmitBid_StatusChangedBeforeWrite(t *testing.T) {
	f := newBidFixture(t)
	open := f.store.auction(f.auction.Id)
	closed := *open
	closed.Status = common.Completed

	auctionRepo := new(mockAuctionRepo)
	auctionRepo.On("GetAuctionById", mock.Anything, open.Id).Return(open, nil).Once()
	auctionRepo.On("GetAuctionById", mock.Anything, open.Id).Return(&closed, nil).Once()
	bidRepo := new(mockBidRepo)
	bidRepo.On("AcceptBid", mock.Anything, mock.Anything).Return(nil, repo_errors.ErrConditionFailed)

	svc := NewBidService(Dependencies{
		Repos: repoSet{auction: auctionRepo, bid: bidRepo}.build(),
		Clock: f.clock,
	})

	_, err := svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
		AuctionId: open.Id.String(),
		Bidder:    f.bidder("u1"),
		Amount:    decimal.NewFromInt(150),
	})
	assert.ErrorIs(t, err, ErrWindowClosed)
	auctionRepo.AssertExpectations(t)
}

func TestBidService_SubmitBid_OutbidBeforeWrite(t *testing.T) {
	f := newBidFixture(t)
	open := f.store.auction(f.auction.Id)
	outbid := *open
	outbid.Leader = &entity.Leader{BidderId: uuid.New(), Amount: decimal.NewFromInt(175)}

	auctionRepo := new(mockAuctionRepo)
	auctionRepo.On("GetAuctionById", mock.Anything, open.Id).Return(open, nil).Once()
	auctionRepo.On("GetAuctionById", mock.Anything, open.Id).Return(&outbid, nil).Once()
	bidRepo := new(mockBidRepo)
	bidRepo.On("AcceptBid", mock.Anything, mock.Anything).Return(nil, repo_errors.ErrConditionFailed)

	svc := NewBidService(Dependencies{
		Repos: repoSet{auction: auctionRepo, bid: bidRepo}.build(),
		Clock: f.clock,
	})

	_, err := svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
		AuctionId: open.Id.String(),
		Bidder:    f.bidder("u1"),
		Amount:    decimal.NewFromInt(150),
	})
	var tooLow *BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.True(t, decimal.NewFromInt(175).Equal(tooLow.MinimumToBeat))
}

func TestBidService_SubmitBid_PersistenceFailure(t *testing.T) {
	f := newBidFixture(t)
	bidRepo := new(mockBidRepo)
	bidRepo.On("AcceptBid", mock.Anything, mock.Anything).Return(nil, errors.New("deadlock detected"))

	repos := f.store.repos()
	repos.Bid = bidRepo
	pub := new(mockPublisher)
	svc := NewBidService(Dependencies{Repos: repos, Clock: f.clock, Events: pub})

	_, err := f.submitWith(svc, f.bidder("u1"), 150)
	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.Nil(t, f.store.auction(f.auction.Id).Leader)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func (f *bidFixture) submitWith(svc *BidService, bidder *entity.Identity, amount int64) (*entity.BidOutputModel, error) {
	return svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
		AuctionId: f.auction.Id.String(),
		Bidder:    bidder,
		Amount:    decimal.NewFromInt(amount),
	})
}

func TestBidService_GetAuctionBids(t *testing.T) {
	f := newBidFixture(t)
	u1, u2 := f.bidder("u1"), f.bidder("u2")

	_, err := f.submit(u1, 110)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.submit(u2, 120)
	require.NoError(t, err)

	bids, err := f.svc.GetAuctionBids(context.Background(), f.auction.Id.String())
	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, "u1", bids[0].BidderUsername)
	assert.Equal(t, "u2", bids[1].BidderUsername)
	assert.Equal(t, 2, bids[1].Seq)

	_, err = f.svc.GetAuctionBids(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrAuctionNotFound)
}

func TestBidService_SubmitBid_AmountOutOfRange(t *testing.T) {
	f := newBidFixture(t)

	_, err := f.svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
		AuctionId: f.auction.Id.String(),
		Bidder:    f.bidder("u1"),
		Amount:    decimal.New(1, 10),
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Empty(t, f.store.ledger(f.auction.Id))

	_, err = f.svc.SubmitBid(context.Background(), &entity.SubmitBidInput{
		AuctionId: f.auction.Id.String(),
		Bidder:    f.bidder("u2"),
		Amount:    decimal.RequireFromString("9999999999.99"),
	})
	assert.NoError(t, err)
}
