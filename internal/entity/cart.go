package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartEntry struct {
	Id           uuid.UUID       `db:"id"`
	UserId       uuid.UUID       `db:"user_id"`
	AuctionId    uuid.UUID       `db:"auction_id"`
	AuctionTitle string          `db:"auction_title"`
	Amount       decimal.Decimal `db:"amount"`
	CreatedAt    time.Time       `db:"created_at"`
}

type CartEntryOutputModel struct {
	Id           string          `json:"id"`
	AuctionId    string          `json:"auctionId"`
	AuctionTitle string          `json:"auctionTitle"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    string          `json:"createdAt"`
}
