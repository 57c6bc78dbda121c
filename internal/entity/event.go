package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionEvent is emitted after a committed bid or status transition.
type AuctionEvent struct {
	EventId        string           `json:"eventId"`
	Type           string           `json:"type"`
	AuctionId      uuid.UUID        `json:"auctionId"`
	BidId          *uuid.UUID       `json:"bidId,omitempty"`
	BidderId       *uuid.UUID       `json:"bidderId,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Status         string           `json:"status,omitempty"`
	PreviousStatus string           `json:"previousStatus,omitempty"`
	OccurredAt     time.Time        `json:"occurredAt"`
}
