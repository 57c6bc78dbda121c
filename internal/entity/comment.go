package entity

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	Id             uuid.UUID `db:"id"`
	AuctionId      uuid.UUID `db:"auction_id"`
	AuthorId       uuid.UUID `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

type CommentOutputModel struct {
	Id             string `json:"id"`
	AuctionId      string `json:"auctionId"`
	AuthorId       string `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	Content        string `json:"content"`
	CreatedAt      string `json:"createdAt"`
}
