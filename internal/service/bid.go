package service

import (
	"context"
	"errors"
	"time"

	"artbid-api/internal/clock"
	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"
	"artbid-api/internal/platform/metrics"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxAmountPlaces = 2

// maxAmount is the first value that no longer fits NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

type BidService struct {
	auctionRepo repo.Auction
	bidRepo     repo.Bid
	clock       clock.Clock
	log         logger.Logger
	metrics     metrics.Recorder
	events      EventPublisher
}

func NewBidService(deps Dependencies) *BidService {
	deps = deps.withDefaults()

	return &BidService{
		auctionRepo: deps.Repos.Auction,
		bidRepo:     deps.Repos.Bid,
		clock:       deps.Clock,
		log:         deps.Logger.With("component", "bids"),
		metrics:     deps.Metrics,
		events:      deps.Events,
	}
}

// SubmitBid checks, in order: the auction exists, the bidder is known, the
// bidding window is open, the amount beats the current price. The first
// failing check decides the error. An accepted bid moves the leader and is
// appended to the ledger atomically.
func (s *BidService) SubmitBid(ctx context.Context, input *entity.SubmitBidInput) (*entity.BidOutputModel, error) {
	bid, err := s.submit(ctx, input)
	if err != nil {
		s.metrics.BidRejected(rejectionReason(err))

		return nil, err
	}

	s.metrics.BidAccepted()
	publishEvent(ctx, s.events, s.log, newBidAcceptedEvent(bid))

	out := mapBid(bid)
	out.BidderUsername = input.Bidder.Username

	return out, nil
}

func (s *BidService) submit(ctx context.Context, input *entity.SubmitBidInput) (*entity.Bid, error) {
	auctionId, err := uuid.Parse(input.AuctionId)
	if err != nil {
		return nil, ErrAuctionNotFound
	}

	auction, err := s.auctionRepo.GetAuctionById(ctx, auctionId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, persistenceError(err)
	}

	if input.Bidder == nil {
		return nil, ErrUnauthorized
	}

	now := s.clock.Now()
	if err := checkBiddable(auction, input, now); err != nil {
		return nil, err
	}

	bid, err := s.bidRepo.AcceptBid(ctx, &entity.AcceptBidInput{
		AuctionId: auction.Id,
		BidderId:  input.Bidder.UserId,
		Amount:    input.Amount,
		At:        now,
	})
	if err == nil {
		return bid, nil
	}
	if !errors.Is(err, repo_errors.ErrConditionFailed) {
		s.log.Errorw("failed to accept bid", "auction_id", auction.Id.String(), "error", err)

		return nil, persistenceError(err)
	}

	// Lost a race against another bid or a status change; report against
	// the state that won.
	current, err := s.auctionRepo.GetAuctionById(ctx, auction.Id)
	if err != nil {
		return nil, persistenceError(err)
	}
	if err := checkBiddable(current, input, now); err != nil {
		return nil, err
	}

	return nil, &BidTooLowError{MinimumToBeat: current.CurrentPrice()}
}

func checkBiddable(auction *entity.Auction, input *entity.SubmitBidInput, now time.Time) error {
	if auction.Status != common.InProgress || !auction.IsOpenAt(now) {
		return ErrWindowClosed
	}

	if price := auction.CurrentPrice(); !input.Amount.GreaterThan(price) {
		return &BidTooLowError{MinimumToBeat: price}
	}

	if !input.Amount.Equal(input.Amount.Truncate(maxAmountPlaces)) {
		return validationError("amount must have at most %d decimal places", maxAmountPlaces)
	}
	if !input.Amount.LessThan(maxAmount) {
		return validationError("amount must be less than %s", maxAmount.String())
	}

	if auction.OwnerId == input.Bidder.UserId {
		return ErrOwnBid
	}

	return nil
}

func (s *BidService) GetAuctionBids(ctx context.Context, auctionId string) ([]entity.BidOutputModel, error) {
	id, err := uuid.Parse(auctionId)
	if err != nil {
		return nil, ErrAuctionNotFound
	}

	if _, err := s.auctionRepo.GetAuctionById(ctx, id); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, persistenceError(err)
	}

	entries, err := s.bidRepo.GetAuctionBids(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapLedger(entries), nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrAuctionNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrWindowClosed):
		return "window_closed"
	case errors.Is(err, ErrBidTooLow):
		return "bid_too_low"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrOwnBid):
		return "own_auction"
	default:
		return "persistence_failure"
	}
}
