package service

import (
	"context"
	"time"

	"artbid-api/internal/auth"
	"artbid-api/internal/clock"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"
	"artbid-api/internal/platform/metrics"
	"artbid-api/internal/repo"
)

type Diagnostics interface {
	Ping(ctx context.Context) error
}

type User interface {
	Register(ctx context.Context, input *entity.RegisterUserInput) (*entity.UserOutputModel, error)
	Login(ctx context.Context, input *entity.LoginInput) (*entity.SessionOutputModel, error)
	VerifySecurityAnswer(ctx context.Context, input *entity.VerifySecurityAnswerInput) error
	ResetPassword(ctx context.Context, input *entity.ResetPasswordInput) error
	GetProfile(ctx context.Context, caller *entity.Identity) (*entity.UserOutputModel, error)
	UpdateProfile(ctx context.Context, caller *entity.Identity, input *entity.UpdateProfileInput) (*entity.UserOutputModel, error)
}

type Auction interface {
	CreateAuction(ctx context.Context, input *entity.CreateAuctionInput) (*entity.AuctionOutputModel, error)
	EditAuction(ctx context.Context, input *entity.EditAuctionInput) (*entity.AuctionOutputModel, error)
	DeleteAuction(ctx context.Context, auctionId string, caller *entity.Identity) error
}

type Bid interface {
	SubmitBid(ctx context.Context, input *entity.SubmitBidInput) (*entity.BidOutputModel, error)
	GetAuctionBids(ctx context.Context, auctionId string) ([]entity.BidOutputModel, error)
}

type Query interface {
	BrowseAuctions(ctx context.Context, openOnly bool, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error)
	GetAuctionDetail(ctx context.Context, auctionId string, caller *entity.Identity) (*entity.AuctionDetailOutputModel, error)
	GetUserAuctions(ctx context.Context, userId string, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error)
	GetMyAuctions(ctx context.Context, caller *entity.Identity, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error)
	GetPastAuctions(ctx context.Context, pg *entity.PaginationInput) ([]entity.AuctionListingOutputModel, error)
}

type Lifecycle interface {
	Tick(ctx context.Context) (TickReport, error)
	Run(ctx context.Context, interval time.Duration) error
}

type Comment interface {
	AddComment(ctx context.Context, auctionId string, author *entity.Identity, content string) (*entity.CommentOutputModel, error)
	GetComments(ctx context.Context, auctionId string, pg *entity.PaginationInput) ([]entity.CommentOutputModel, error)
}

type Cart interface {
	AddToCart(ctx context.Context, caller *entity.Identity, auctionId string) (*entity.CartEntryOutputModel, error)
	GetCart(ctx context.Context, caller *entity.Identity, pg *entity.PaginationInput) ([]entity.CartEntryOutputModel, error)
}

type Watch interface {
	Watch(ctx context.Context, auctionId string) (Subscription, error)
}

type Services struct {
	Diagnostics Diagnostics
	User        User
	Auction     Auction
	Bid         Bid
	Query       Query
	Lifecycle   Lifecycle
	Comment     Comment
	Cart        Cart
	Watch       Watch
}

// Dependencies are shared by all services. Nil optional fields fall back to
// no-op implementations.
type Dependencies struct {
	Repos      *repo.Repositories
	Clock      clock.Clock
	Logger     logger.Logger
	Metrics    metrics.Recorder
	Events     EventPublisher
	Subscriber EventSubscriber
	Tokens     *auth.TokenManager
	Hasher     *auth.PasswordHasher
	Location   *time.Location
	// TickTimeout bounds each lifecycle tick started by Run; zero means none.
	TickTimeout time.Duration
}

func (d Dependencies) withDefaults() Dependencies {
	deps := d
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	if deps.Events == nil {
		deps.Events = NopPublisher{}
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}

	return deps
}

func NewServices(deps Dependencies) *Services {
	return &Services{
		Diagnostics: NewDiagnosticsService(deps),
		User:        NewUserService(deps),
		Auction:     NewAuctionService(deps),
		Bid:         NewBidService(deps),
		Query:       NewQueryService(deps),
		Lifecycle:   NewLifecycleService(deps),
		Comment:     NewCommentService(deps),
		Cart:        NewCartService(deps),
		Watch:       NewWatchService(deps),
	}
}
