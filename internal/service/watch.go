package service

import (
	"context"
	"errors"

	"artbid-api/internal/common"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

type WatchService struct {
	auctionRepo repo.Auction
	subscriber  EventSubscriber
}

func NewWatchService(deps Dependencies) *WatchService {
	return &WatchService{
		auctionRepo: deps.Repos.Auction,
		subscriber:  deps.Subscriber,
	}
}

// Watch subscribes to the events of one auction. The caller closes the
// subscription.
func (s *WatchService) Watch(ctx context.Context, auctionId string) (Subscription, error) {
	if s.subscriber == nil {
		return nil, ErrEventsUnavailable
	}

	id, err := uuid.Parse(auctionId)
	if err != nil {
		return nil, ErrAuctionNotFound
	}

	auction, err := s.auctionRepo.GetAuctionById(ctx, id)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrAuctionNotFound
		}

		return nil, persistenceError(err)
	}
	if auction.Status == common.Deleted {
		return nil, ErrAuctionNotFound
	}

	sub, err := s.subscriber.Subscribe(ctx, auction.Id)
	if err != nil {
		return nil, errors.Join(ErrEventsUnavailable, err)
	}

	return sub, nil
}
