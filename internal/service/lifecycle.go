package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"artbid-api/internal/clock"
	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"
	"artbid-api/internal/platform/metrics"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"
)

// TickReport summarizes one pass of the lifecycle engine.
type TickReport struct {
	Evaluated    int
	Transitioned int
	Failed       int
}

type LifecycleService struct {
	auctionRepo repo.Auction
	bidRepo     repo.Bid
	clock       clock.Clock
	log         logger.Logger
	metrics     metrics.Recorder
	events      EventPublisher
	tickTimeout time.Duration
}

func NewLifecycleService(deps Dependencies) *LifecycleService {
	deps = deps.withDefaults()

	return &LifecycleService{
		auctionRepo: deps.Repos.Auction,
		bidRepo:     deps.Repos.Bid,
		clock:       deps.Clock,
		log:         deps.Logger.With("component", "lifecycle"),
		metrics:     deps.Metrics,
		events:      deps.Events,
		tickTimeout: deps.TickTimeout,
	}
}

// Tick moves every active or in-progress auction to the status its window
// dictates at the current instant. Each auction is written on its own with a
// conditional update; a failed write is logged and the scan goes on. Running
// Tick twice at the same instant changes nothing the second time.
func (s *LifecycleService) Tick(ctx context.Context) (TickReport, error) {
	var report TickReport
	started := time.Now()
	defer func() {
		s.metrics.TickDuration(time.Since(started))
	}()

	auctions, err := s.auctionRepo.GetAuctionsByStatuses(ctx, common.NonTerminalStatuses)
	if err != nil {
		return report, fmt.Errorf("scan auctions: %w", err)
	}

	now := s.clock.Now()
	for i := range auctions {
		auction := &auctions[i]
		report.Evaluated++

		next := auction.NextStatus(now)
		if next == auction.Status {
			continue
		}

		applied, err := s.auctionRepo.UpdateAuctionStatus(ctx, auction.Id, auction.Status, next, now)
		if err != nil {
			report.Failed++
			s.metrics.TickFailed()
			s.log.Errorw("failed to transition auction",
				"auction_id", auction.Id.String(), "from", auction.Status.String(), "to", next.String(), "error", err)

			continue
		}
		if !applied {
			// moved by someone else since the scan
			continue
		}

		report.Transitioned++
		s.metrics.Transition(auction.Status.String(), next.String())

		event := newStatusChangedEvent(auction, auction.Status, next, now)
		if next == common.Completed {
			s.attachWinner(ctx, event)
		}
		publishEvent(ctx, s.events, s.log, event)
	}

	if report.Transitioned > 0 || report.Failed > 0 {
		s.log.Infow("lifecycle tick finished",
			"evaluated", report.Evaluated, "transitioned", report.Transitioned, "failed", report.Failed)
	}

	return report, nil
}

// attachWinner puts the highest ledger bid on a completion event. An auction
// without bids closes unsold.
func (s *LifecycleService) attachWinner(ctx context.Context, event *entity.AuctionEvent) {
	winning, err := s.bidRepo.GetHighestBid(ctx, event.AuctionId)
	switch {
	case errors.Is(err, repo_errors.ErrNotFound):
		s.log.Infow("auction closed unsold", "auction_id", event.AuctionId.String())
	case err != nil:
		s.log.Warnw("failed to read winning bid", "auction_id", event.AuctionId.String(), "error", err)
	default:
		event.BidId, event.BidderId, event.Amount = &winning.Id, &winning.BidderId, &winning.Amount
		s.log.Infow("auction completed",
			"auction_id", event.AuctionId.String(), "winner_id", winning.BidderId.String(), "amount", winning.Amount.String())
	}
}

// Run ticks immediately and then every interval until ctx is done.
func (s *LifecycleService) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("lifecycle interval must be positive, got %s", interval)
	}

	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("lifecycle loop stopped")

			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *LifecycleService) runOnce(ctx context.Context) {
	if s.tickTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.tickTimeout)
		defer cancel()
	}

	if _, err := s.Tick(ctx); err != nil {
		s.log.Errorw("lifecycle tick failed", "error", err)
	}
}
