package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model, append-only
type Bid struct {
	Id        uuid.UUID       `json:"id" db:"id"`
	AuctionId uuid.UUID       `json:"auctionId" db:"auction_id"`
	BidderId  uuid.UUID       `json:"bidderId" db:"bidder_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Seq       int             `json:"seq" db:"seq"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// LedgerEntry is a bid joined with its bidder's username.
type LedgerEntry struct {
	Bid
	BidderUsername string `db:"bidder_username"`
}

// service input model
type SubmitBidInput struct {
	AuctionId string          // given
	Bidder    *Identity       // from session, nil when anonymous
	Amount    decimal.Decimal // given
}

// repo input model
type AcceptBidInput struct {
	AuctionId uuid.UUID
	BidderId  uuid.UUID
	Amount    decimal.Decimal
	At        time.Time
	// Id, Seq are assigned by the repository
}

// controller model
type BidOutputModel struct {
	Id             string          `json:"id"`
	AuctionId      string          `json:"auctionId"`
	BidderId       string          `json:"bidderId"`
	BidderUsername string          `json:"bidderUsername,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Seq            int             `json:"seq"`
	CreatedAt      string          `json:"createdAt"`
}
