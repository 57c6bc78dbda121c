package repo

import (
	"context"
	"time"

	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/repo/pgdb"
	"artbid-api/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

type User interface {
	CreateUser(ctx context.Context, user *entity.User) (uuid.UUID, error)
	GetUserById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input *entity.UpdateProfileInput) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type Auction interface {
	CreateAuction(ctx context.Context, auction *entity.Auction) (uuid.UUID, error)
	GetAuctionById(ctx context.Context, id uuid.UUID) (*entity.Auction, error)
	GetAuctionsByStatuses(ctx context.Context, statuses []common.AuctionStatus) ([]entity.Auction, error)
	FindAuctions(ctx context.Context, filter *entity.AuctionFilter, pg *entity.PaginationInput) ([]entity.AuctionListing, error)
	GetAuctionsByOwner(ctx context.Context, ownerId uuid.UUID, pg *entity.PaginationInput) ([]entity.AuctionListing, error)
	// UpdateAuctionStatus applies from -> to only if the row still holds from.
	UpdateAuctionStatus(ctx context.Context, id uuid.UUID, from common.AuctionStatus, to common.AuctionStatus, at time.Time) (bool, error)
	EditAuction(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, changes *entity.AuctionChanges) error
	SoftDeleteAuction(ctx context.Context, id uuid.UUID, ownerId uuid.UUID, at time.Time) (common.AuctionStatus, error)
}

type Bid interface {
	// AcceptBid moves the leader and appends to the ledger in one
	// transaction. Returns repo_errors.ErrConditionFailed when the auction
	// is not open at input.At or input.Amount does not beat the current price.
	AcceptBid(ctx context.Context, input *entity.AcceptBidInput) (*entity.Bid, error)
	GetAuctionBids(ctx context.Context, auctionId uuid.UUID) ([]entity.LedgerEntry, error)
	GetHighestBid(ctx context.Context, auctionId uuid.UUID) (*entity.Bid, error)
}

type Comment interface {
	CreateComment(ctx context.Context, comment *entity.Comment) (uuid.UUID, error)
	GetAuctionComments(ctx context.Context, auctionId uuid.UUID, pg *entity.PaginationInput) ([]entity.Comment, error)
}

type Cart interface {
	AddCartEntry(ctx context.Context, userId uuid.UUID, auctionId uuid.UUID, at time.Time) (uuid.UUID, error)
	GetUserCart(ctx context.Context, userId uuid.UUID, pg *entity.PaginationInput) ([]entity.CartEntry, error)
	GetLatestCartEntry(ctx context.Context, userId uuid.UUID, auctionId uuid.UUID) (*entity.CartEntry, error)
}

type Repositories struct {
	Diagnostics
	User
	Auction
	Bid
	Comment
	Cart
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics: pgdb.NewDiagnosticsRepo(p),
		User:        pgdb.NewUserRepo(p),
		Auction:     pgdb.NewAuctionRepo(p),
		Bid:         pgdb.NewBidRepo(p),
		Comment:     pgdb.NewCommentRepo(p),
		Cart:        pgdb.NewCartRepo(p),
	}
}
