package service

import (
	"context"
	"errors"

	"artbid-api/internal/clock"
	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

// QueryService only reads.
type QueryService struct {
	auctionRepo repo.Auction
	bidRepo     repo.Bid
	userRepo    repo.User
	cartRepo    repo.Cart
	clock       clock.Clock
}

func NewQueryService(deps Dependencies) *QueryService {
	deps = deps.withDefaults()

	return &QueryService{
		auctionRepo: deps.Repos.Auction,
		bidRepo:     deps.Repos.Bid,
		userRepo:    deps.Repos.User,
		cartRepo:    deps.Repos.Cart,
		clock:       deps.Clock,
	}
}

func (s *QueryService) findAuctions(ctx context.Context, filter *entity.AuctionFilter, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error) {
	listings, err := s.auctionRepo.FindAuctions(ctx, filter, pg)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapListings(listings), nil
}

// BrowseAuctions lists active, in-progress and completed auctions. With
// openOnly it keeps only those whose window contains the current instant.
func (s *QueryService) BrowseAuctions(ctx context.Context, openOnly bool, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error) {
	filter := &entity.AuctionFilter{Statuses: common.BrowsableStatuses}
	if openOnly {
		now := s.clock.Now()
		filter.OpenAt = &now
	}

	return s.findAuctions(ctx, filter, pg)
}

func (s *QueryService) GetPastAuctions(ctx context.Context, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error) {
	return s.findAuctions(ctx, &entity.AuctionFilter{Statuses: []common.AuctionStatus{common.Completed}}, pg)
}

// GetUserAuctions lists everything a user owns, whatever its status.
func (s *QueryService) GetUserAuctions(ctx context.Context, userId string, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error) {
	id, err := uuid.Parse(userId)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if _, err := s.userRepo.GetUserById(ctx, id); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, persistenceError(err)
	}

	listings, err := s.auctionRepo.GetAuctionsByOwner(ctx, id, pg)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapListings(listings), nil
}

// GetMyAuctions lists everything the caller owns, whatever its status.
func (s *QueryService) GetMyAuctions(ctx context.Context, caller *entity.Identity, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	listings, err := s.auctionRepo.GetAuctionsByOwner(ctx, caller.UserId, pg)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapListings(listings), nil
}

// GetAuctionDetail joins the auction with its owner, its leader, the whole
// ledger in order and, for a known caller, their latest cart entry.
func (s *QueryService) GetAuctionDetail(ctx context.Context, auctionId string, caller *entity.Identity) (*entity.AuctionDetailOutputModel, error) {
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

	owner, err := s.userRepo.GetUserById(ctx, auction.OwnerId)
	if err != nil {
		return nil, persistenceError(err)
	}

	ledger, err := s.bidRepo.GetAuctionBids(ctx, auction.Id)
	if err != nil {
		return nil, persistenceError(err)
	}

	detail := &entity.AuctionDetailOutputModel{
		Auction: *mapAuction(auction),
		Owner:   *mapUserSummary(owner),
		Bids:    mapLedger(ledger),
	}

	if auction.Leader != nil {
		leader, err := s.userRepo.GetUserById(ctx, auction.Leader.BidderId)
		if err != nil {
			return nil, persistenceError(err)
		}
		detail.Leader = mapUserSummary(leader)
		detail.Auction.Leader.BidderUsername = leader.Username
	}

	if caller != nil {
		entry, err := s.cartRepo.GetLatestCartEntry(ctx, caller.UserId, auction.Id)
		switch {
		case err == nil:
			detail.CartEntry = mapCartEntry(entry)
		case !errors.Is(err, repo_errors.ErrNotFound):
			return nil, persistenceError(err)
		}
	}

	return detail, nil
}
