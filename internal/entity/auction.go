package entity

import (
	"fmt"
	"strings"
	"time"

	"artbid-api/internal/common"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DateLayout      = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

// Leader is the current highest accepted bid of an auction.
type Leader struct {
	BidderId uuid.UUID       `json:"bidderId" db:"leader_id"`
	Amount   decimal.Decimal `json:"amount" db:"leading_amount"`
}

// db model
type Auction struct {
	Id          uuid.UUID            `json:"id" db:"id"`
	Title       string               `json:"title" db:"title"`
	Description string               `json:"description" db:"description"`
	Image       string               `json:"image" db:"image"`
	OwnerId     uuid.UUID            `json:"ownerId" db:"owner_id"`
	MinBid      decimal.Decimal      `json:"minBid" db:"min_bid"`
	Leader      *Leader              `json:"leader"`
	StartAt     time.Time            `json:"startAt" db:"start_at"`
	EndAt       time.Time            `json:"endAt" db:"end_at"`
	Status      common.AuctionStatus `json:"status" db:"status"`
	BidCount    int                  `json:"bidCount" db:"bid_count"`
	LastBidAt   *time.Time           `json:"lastBidAt" db:"last_bid_at"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" db:"updated_at"`
}

// CurrentPrice is the amount a new bid has to exceed.
func (a *Auction) CurrentPrice() decimal.Decimal {
	if a.Leader != nil {
		return a.Leader.Amount
	}

	return a.MinBid
}

func (a *Auction) HasBids() bool {
	return a.Leader != nil || a.BidCount > 0
}

// IsOpenAt reports whether now lies in [start, end).
func (a *Auction) IsOpenAt(now time.Time) bool {
	return !now.Before(a.StartAt) && now.Before(a.EndAt)
}

// NextStatus returns the status the auction should hold at now. Boundary
// instants belong to the later state. Terminal statuses never move.
func (a *Auction) NextStatus(now time.Time) common.AuctionStatus {
	if a.Status.IsTerminal() {
		return a.Status
	}

	switch a.Status {
	case common.Active:
		if !now.Before(a.EndAt) {
			return common.Expired
		}
		if !now.Before(a.StartAt) {
			return common.InProgress
		}
	case common.InProgress:
		if !now.Before(a.EndAt) {
			return common.Completed
		}
	}

	return a.Status
}

// AuctionListing is an auction joined with its owner's display data.
type AuctionListing struct {
	Auction
	OwnerUsername string `db:"owner_username"`
	OwnerName     string `db:"owner_name"`
}

// repo filter model
type AuctionFilter struct {
	Statuses []common.AuctionStatus
	OwnerId  *uuid.UUID
	OpenAt   *time.Time // only auctions whose window contains OpenAt
}

// service input model
type CreateAuctionInput struct {
	Owner       *Identity       // given
	Title       string          // given
	Description string          // given
	Image       string          // given, optional
	MinBid      decimal.Decimal // given
	StartDate   string          // given: 2006-01-02
	StartTime   string          // given: 15:04
	EndDate     string          // given
	EndTime     string          // given
	// Id, Status=active, CreatedAt set by the service
}

// service input model, nil fields keep their current value
type EditAuctionInput struct {
	AuctionId   string
	Editor      *Identity
	Title       *string
	Description *string
	Image       *string
	MinBid      *decimal.Decimal
	StartDate   *string
	StartTime   *string
	EndDate     *string
	EndTime     *string
}

func (in *EditAuctionInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Image == nil && in.MinBid == nil &&
		in.StartDate == nil && in.StartTime == nil && in.EndDate == nil && in.EndTime == nil
}

// repo input model
type AuctionChanges struct {
	Title       string
	Description string
	Image       string
	MinBid      decimal.Decimal
	StartAt     time.Time
	EndAt       time.Time
	UpdatedAt   time.Time
}

// CombineDateTime joins a calendar date and a time of day in loc.
func CombineDateTime(date string, timeOfDay string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(DateLayout+" "+TimeOfDayLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(timeOfDay), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, timeOfDay, err)
	}

	return t.UTC(), nil
}

// controller model
type LeaderOutputModel struct {
	BidderId       string          `json:"bidderId"`
	BidderUsername string          `json:"bidderUsername,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
}

// controller model
type AuctionOutputModel struct {
	Id           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Image        string             `json:"image"`
	OwnerId      string             `json:"ownerId"`
	MinBid       decimal.Decimal    `json:"minBid"`
	CurrentPrice decimal.Decimal    `json:"currentPrice"`
	Leader       *LeaderOutputModel `json:"leader"`
	StartAt      string             `json:"startAt"`
	EndAt        string             `json:"endAt"`
	Status       string             `json:"status"`
	BidCount     int                `json:"bidCount"`
	CreatedAt    string             `json:"createdAt"`
}

// controller model
type AuctionListingOutputModel struct {
	AuctionOutputModel
	Owner UserSummaryOutputModel `json:"owner"`
}

// controller model
type AuctionDetailOutputModel struct {
	Auction   AuctionOutputModel      `json:"auction"`
	Owner     UserSummaryOutputModel  `json:"owner"`
	Leader    *UserSummaryOutputModel `json:"leader"`
	Bids      []BidOutputModel        `json:"bids"`
	CartEntry *CartEntryOutputModel   `json:"cartEntry"`
}
