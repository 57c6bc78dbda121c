package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"artbid-api/internal/clock"
	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 1000
	maxImageLength       = 255
)

type AuctionService struct {
	auctionRepo repo.Auction
	clock       clock.Clock
	log         logger.Logger
	events      EventPublisher
	location    *time.Location
}

func NewAuctionService(deps Dependencies) *AuctionService {
	deps = deps.withDefaults()

	return &AuctionService{
		auctionRepo: deps.Repos.Auction,
		clock:       deps.Clock,
		log:         deps.Logger.With("component", "auctions"),
		events:      deps.Events,
		location:    deps.Location,
	}
}

type auctionFields struct {
	title       string
	description string
	image       string
	minBid      decimal.Decimal
	startAt     time.Time
	endAt       time.Time
}

func (f *auctionFields) validate(now time.Time) error {
	if strings.TrimSpace(f.title) == "" {
		return validationError("title is required")
	}
	if utf8.RuneCountInString(f.title) > maxTitleLength {
		return validationError("title must be at most %d characters", maxTitleLength)
	}
	if strings.TrimSpace(f.description) == "" {
		return validationError("description is required")
	}
	if utf8.RuneCountInString(f.description) > maxDescriptionLength {
		return validationError("description must be at most %d characters", maxDescriptionLength)
	}
	if utf8.RuneCountInString(f.image) > maxImageLength {
		return validationError("image reference must be at most %d characters", maxImageLength)
	}
	if !f.minBid.IsPositive() {
		return validationError("minimum bid must be greater than zero")
	}
	if !f.minBid.Equal(f.minBid.Truncate(maxAmountPlaces)) {
		return validationError("minimum bid must have at most %d decimal places", maxAmountPlaces)
	}
	if !f.minBid.LessThan(maxAmount) {
		return validationError("minimum bid must be less than %s", maxAmount.String())
	}
	if !f.startAt.Before(f.endAt) {
		return validationError("start must be before end")
	}
	if !f.endAt.After(now) {
		return validationError("end must be in the future")
	}

	return nil
}

func (s *AuctionService) combine(date string, timeOfDay string, field string) (time.Time, error) {
	t, err := entity.CombineDateTime(date, timeOfDay, s.location)
	if err != nil {
		return time.Time{}, validationError("%s must be a date YYYY-MM-DD and a time HH:MM", field)
	}

	return t, nil
}

func (s *AuctionService) CreateAuction(ctx context.Context, input *entity.CreateAuctionInput) (*entity.AuctionOutputModel, error) {
	if input.Owner == nil {
		return nil, ErrUnauthorized
	}

	startAt, err := s.combine(input.StartDate, input.StartTime, "start")
	if err != nil {
		return nil, err
	}
	endAt, err := s.combine(input.EndDate, input.EndTime, "end")
	if err != nil {
		return nil, err
	}

	fields := auctionFields{
		title:       strings.TrimSpace(input.Title),
		description: strings.TrimSpace(input.Description),
		image:       strings.TrimSpace(input.Image),
		minBid:      input.MinBid,
		startAt:     startAt,
		endAt:       endAt,
	}
	now := s.clock.Now()
	if err := fields.validate(now); err != nil {
		return nil, err
	}

	auction := &entity.Auction{
		Title:       fields.title,
		Description: fields.description,
		Image:       fields.image,
		OwnerId:     input.Owner.UserId,
		MinBid:      fields.minBid,
		StartAt:     fields.startAt,
		EndAt:       fields.endAt,
		Status:      common.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.auctionRepo.CreateAuction(ctx, auction)
	if err != nil {
		return nil, persistenceError(err)
	}

	created, err := s.auctionRepo.GetAuctionById(ctx, id)
	if err != nil {
		return nil, persistenceError(err)
	}

	s.log.Infow("auction created", "auction_id", id.String(), "owner_id", input.Owner.UserId.String())

	return mapAuction(created), nil
}

// getOwnedAuction loads the auction and checks that caller owns it.
func (s *AuctionService) getOwnedAuction(ctx context.Context, auctionId string, caller *entity.Identity) (*entity.Auction, error) {
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

	if caller == nil {
		return nil, ErrUnauthorized
	}
	if auction.OwnerId != caller.UserId {
		return nil, ErrForbidden
	}

	return auction, nil
}

// EditAuction applies the given fields on top of the stored auction. Only
// active auctions without bids can be edited.
func (s *AuctionService) EditAuction(ctx context.Context, input *entity.EditAuctionInput) (*entity.AuctionOutputModel, error) {
	if input.IsEmpty() {
		return nil, ErrNoNewChanges
	}

	auction, err := s.getOwnedAuction(ctx, input.AuctionId, input.Editor)
	if err != nil {
		return nil, err
	}
	if auction.Status != common.Active || auction.HasBids() {
		return nil, ErrAuctionLocked
	}

	fields := auctionFields{
		title:       auction.Title,
		description: auction.Description,
		image:       auction.Image,
		minBid:      auction.MinBid,
		startAt:     auction.StartAt,
		endAt:       auction.EndAt,
	}
	if input.Title != nil {
		fields.title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		fields.description = strings.TrimSpace(*input.Description)
	}
	if input.Image != nil {
		fields.image = strings.TrimSpace(*input.Image)
	}
	if input.MinBid != nil {
		fields.minBid = *input.MinBid
	}

	local := func(t time.Time) (string, string) {
		t = t.In(s.location)
		return t.Format(entity.DateLayout), t.Format(entity.TimeOfDayLayout)
	}
	if input.StartDate != nil || input.StartTime != nil {
		date, tod := local(auction.StartAt)
		if fields.startAt, err = s.combine(valueOr(input.StartDate, date), valueOr(input.StartTime, tod), "start"); err != nil {
			return nil, err
		}
	}
	if input.EndDate != nil || input.EndTime != nil {
		date, tod := local(auction.EndAt)
		if fields.endAt, err = s.combine(valueOr(input.EndDate, date), valueOr(input.EndTime, tod), "end"); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	if err := fields.validate(now); err != nil {
		return nil, err
	}

	err = s.auctionRepo.EditAuction(ctx, auction.Id, auction.OwnerId, &entity.AuctionChanges{
		Title:       fields.title,
		Description: fields.description,
		Image:       fields.image,
		MinBid:      fields.minBid,
		StartAt:     fields.startAt,
		EndAt:       fields.endAt,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, repo_errors.ErrConditionFailed) {
			return nil, ErrAuctionLocked
		}

		return nil, persistenceError(err)
	}

	updated, err := s.auctionRepo.GetAuctionById(ctx, auction.Id)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapAuction(updated), nil
}

// DeleteAuction soft-deletes an active or in-progress auction.
func (s *AuctionService) DeleteAuction(ctx context.Context, auctionId string, caller *entity.Identity) error {
	auction, err := s.getOwnedAuction(ctx, auctionId, caller)
	if err != nil {
		return err
	}
	if !auction.Status.CanTransitionTo(common.Deleted) {
		return ErrAuctionFinished
	}

	now := s.clock.Now()
	prev, err := s.auctionRepo.SoftDeleteAuction(ctx, auction.Id, caller.UserId, now)
	if err != nil {
		if errors.Is(err, repo_errors.ErrConditionFailed) {
			return ErrAuctionFinished
		}

		return persistenceError(err)
	}

	publishEvent(ctx, s.events, s.log, newStatusChangedEvent(auction, prev, common.Deleted, now))

	return nil
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}

	return *v
}
