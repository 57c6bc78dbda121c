package service

import (
	"context"
	"errors"
	"time"

	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"

	"github.com/google/uuid"
)

type EventPublisher interface {
	Publish(ctx context.Context, event *entity.AuctionEvent) error
}

type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, auctionId uuid.UUID) (Subscription, error)
}

// FanOutPublisher hands every event to all of its publishers and reports
// the joined failures.
type FanOutPublisher struct {
	publishers []EventPublisher
}

func NewFanOutPublisher(publishers ...EventPublisher) *FanOutPublisher {
	return &FanOutPublisher{publishers: publishers}
}

func (p *FanOutPublisher) Publish(ctx context.Context, event *entity.AuctionEvent) error {
	var errs []error
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *entity.AuctionEvent) error {
	return nil
}

// publishEvent never fails the caller: the state change is already committed.
func publishEvent(ctx context.Context, pub EventPublisher, log logger.Logger, event *entity.AuctionEvent) {
	if err := pub.Publish(ctx, event); err != nil {
		log.Warnw("failed to publish auction event",
			"type", event.Type, "auction_id", event.AuctionId.String(), "error", err)
	}
}

func newBidAcceptedEvent(bid *entity.Bid) *entity.AuctionEvent {
	bidId, bidderId, amount := bid.Id, bid.BidderId, bid.Amount

	return &entity.AuctionEvent{
		EventId:    uuid.NewString(),
		Type:       common.BidAcceptedEvent,
		AuctionId:  bid.AuctionId,
		BidId:      &bidId,
		BidderId:   &bidderId,
		Amount:     &amount,
		Status:     common.InProgress.String(),
		OccurredAt: bid.CreatedAt,
	}
}

func newStatusChangedEvent(a *entity.Auction, from common.AuctionStatus, to common.AuctionStatus, at time.Time) *entity.AuctionEvent {
	event := &entity.AuctionEvent{
		EventId:        uuid.NewString(),
		Type:           common.StatusChangedEvent,
		AuctionId:      a.Id,
		Status:         to.String(),
		PreviousStatus: from.String(),
		OccurredAt:     at,
	}
	if a.Leader != nil {
		bidderId, amount := a.Leader.BidderId, a.Leader.Amount
		event.BidderId = &bidderId
		event.Amount = &amount
	}

	return event
}
