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

type CartService struct {
	auctionRepo repo.Auction
	cartRepo    repo.Cart
	clock       clock.Clock
}

func NewCartService(deps Dependencies) *CartService {
	deps = deps.withDefaults()

	return &CartService{
		auctionRepo: deps.Repos.Auction,
		cartRepo:    deps.Repos.Cart,
		clock:       deps.Clock,
	}
}

// AddToCart records that the caller takes a completed auction they won.
func (s *CartService) AddToCart(ctx context.Context, caller *entity.Identity, auctionId string) (*entity.CartEntryOutputModel, error) {
	if caller == nil {
		return nil, ErrUnauthorized
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

	if auction.Status != common.Completed || auction.Leader == nil || auction.Leader.BidderId != caller.UserId {
		return nil, ErrCartNotAllowed
	}

	now := s.clock.Now()
	entryId, err := s.cartRepo.AddCartEntry(ctx, caller.UserId, auction.Id, now)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapCartEntry(&entity.CartEntry{
		Id:           entryId,
		UserId:       caller.UserId,
		AuctionId:    auction.Id,
		AuctionTitle: auction.Title,
		Amount:       auction.CurrentPrice(),
		CreatedAt:    now,
	}), nil
}

func (s *CartService) GetCart(ctx context.Context, caller *entity.Identity, pg *entity.PaginationInput) ([]entity.CartEntryOutputModel, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	entries, err := s.cartRepo.GetUserCart(ctx, caller.UserId, pg)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapCartEntries(entries), nil
}
