package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeStore keeps everything in memory and applies the same conditional
// writes as the Postgres repositories, under a single mutex.
type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	auctions map[uuid.UUID]*entity.Auction
	bids     []entity.Bid
	comments []entity.Comment
	cart     []entity.CartEntry
	pingErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*entity.User),
		auctions: make(map[uuid.UUID]*entity.Auction),
	}
}

func (f *fakeStore) repos() *repo.Repositories {
	return &repo.Repositories{
		Diagnostics: f,
		User:        f,
		Auction:     f,
		Bid:         f,
		Comment:     f,
		Cart:        f,
	}
}

// repoSet builds repositories backed by a fresh fakeStore, with the given
// mocks swapped in.
type repoSet struct {
	auction repo.Auction
	bid     repo.Bid
}

func (r repoSet) build() *repo.Repositories {
	repos := newFakeStore().repos()
	if r.auction != nil {
		repos.Auction = r.auction
	}
	if r.bid != nil {
		repos.Bid = r.bid
	}

	return repos
}

func copyAuction(a *entity.Auction) *entity.Auction {
	c := *a
	if a.Leader != nil {
		l := *a.Leader
		c.Leader = &l
	}
	if a.LastBidAt != nil {
		t := *a.LastBidAt
		c.LastBidAt = &t
	}

	return &c
}

func (f *fakeStore) addUser(username string) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := &entity.User{Id: uuid.New(), Username: username, Email: username + "@example.com", Name: username}
	f.users[u.Id] = u

	return u
}

func (f *fakeStore) addAuction(a entity.Auction) *entity.Auction {
	f.mu.Lock()
	defer f.mu.Unlock()

	if a.Id == uuid.Nil {
		a.Id = uuid.New()
	}
	if a.Title == "" {
		a.Title = "Water Lilies"
	}
	f.auctions[a.Id] = copyAuction(&a)

	return copyAuction(&a)
}

func (f *fakeStore) auction(id uuid.UUID) *entity.Auction {
	f.mu.Lock()
	defer f.mu.Unlock()

	return copyAuction(f.auctions[id])
}

func (f *fakeStore) ledger(auctionId uuid.UUID) []entity.Bid {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.Bid, 0)
	for _, b := range f.bids {
		if b.AuctionId == auctionId {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	return out
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}

func (f *fakeStore) CreateUser(_ context.Context, user *entity.User) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == user.Username {
			return uuid.Nil, repo_errors.ErrAlreadyExists
		}
	}
	c := *user
	c.Id = uuid.New()
	f.users[c.Id] = &c

	return c.Id, nil
}

func (f *fakeStore) GetUserById(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}
	c := *u

	return &c, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

func (f *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, input *entity.UpdateProfileInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	u.Name, u.Email, u.About, u.ProfileImage = input.Name, input.Email, input.About, input.ProfileImage

	return nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	u.PasswordHash = passwordHash

	return nil
}

func (f *fakeStore) CreateAuction(_ context.Context, auction *entity.Auction) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := copyAuction(auction)
	c.Id = uuid.New()
	f.auctions[c.Id] = c

	return c.Id, nil
}

func (f *fakeStore) GetAuctionById(_ context.Context, id uuid.UUID) (*entity.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.auctions[id]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	return copyAuction(a), nil
}

func hasStatus(statuses []common.AuctionStatus, s common.AuctionStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}

	return false
}

func (f *fakeStore) GetAuctionsByStatuses(_ context.Context, statuses []common.AuctionStatus) ([]entity.Auction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.Auction, 0)
	for _, a := range f.auctions {
		if hasStatus(statuses, a.Status) {
			out = append(out, *copyAuction(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndAt.Before(out[j].EndAt) })

	return out, nil
}

func (f *fakeStore) FindAuctions(_ context.Context, filter *entity.AuctionFilter, pg *entity.PaginationInput) ([]entity.AuctionListing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.AuctionListing, 0)
	for _, a := range f.auctions {
		if filter != nil {
			if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, a.Status) {
				continue
			}
			if filter.OwnerId != nil && a.OwnerId != *filter.OwnerId {
				continue
			}
			if filter.OpenAt != nil && !a.IsOpenAt(*filter.OpenAt) {
				continue
			}
		}
		listing := entity.AuctionListing{Auction: *copyAuction(a)}
		if owner, ok := f.users[a.OwnerId]; ok {
			listing.OwnerUsername, listing.OwnerName = owner.Username, owner.Name
		}
		out = append(out, listing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if pg != nil {
		if pg.Offset >= len(out) {
			return []entity.AuctionListing{}, nil
		}
		out = out[pg.Offset:]
		if pg.Limit > 0 && pg.Limit < len(out) {
			out = out[:pg.Limit]
		}
	}

	return out, nil
}

func (f *fakeStore) GetAuctionsByOwner(ctx context.Context, ownerId uuid.UUID, pg *entity.PaginationInput) ([]entity.AuctionListing, error) {
	return f.FindAuctions(ctx, &entity.AuctionFilter{OwnerId: &ownerId}, pg)
}

func (f *fakeStore) UpdateAuctionStatus(_ context.Context, id uuid.UUID, from common.AuctionStatus, to common.AuctionStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.auctions[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = at

	return true, nil
}

func (f *fakeStore) EditAuction(_ context.Context, id uuid.UUID, ownerId uuid.UUID, changes *entity.AuctionChanges) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.auctions[id]
	if !ok || a.OwnerId != ownerId || a.Status != common.Active || a.HasBids() {
		return repo_errors.ErrConditionFailed
	}
	a.Title, a.Description, a.Image = changes.Title, changes.Description, changes.Image
	a.MinBid, a.StartAt, a.EndAt, a.UpdatedAt = changes.MinBid, changes.StartAt, changes.EndAt, changes.UpdatedAt

	return nil
}

func (f *fakeStore) SoftDeleteAuction(_ context.Context, id uuid.UUID, ownerId uuid.UUID, at time.Time) (common.AuctionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.auctions[id]
	if !ok {
		return "", repo_errors.ErrNotFound
	}
	if a.OwnerId != ownerId || !a.Status.CanTransitionTo(common.Deleted) {
		return "", repo_errors.ErrConditionFailed
	}
	prev := a.Status
	a.Status = common.Deleted
	a.UpdatedAt = at

	return prev, nil
}

func (f *fakeStore) AcceptBid(_ context.Context, input *entity.AcceptBidInput) (*entity.Bid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.auctions[input.AuctionId]
	if !ok || a.Status != common.InProgress || !a.IsOpenAt(input.At) || !input.Amount.GreaterThan(a.CurrentPrice()) {
		return nil, repo_errors.ErrConditionFailed
	}

	at := input.At
	if a.LastBidAt != nil && a.LastBidAt.After(at) {
		at = *a.LastBidAt
	}
	a.Leader = &entity.Leader{BidderId: input.BidderId, Amount: input.Amount}
	a.BidCount++
	a.LastBidAt = &at
	a.UpdatedAt = input.At

	bid := entity.Bid{
		Id:        uuid.New(),
		AuctionId: input.AuctionId,
		BidderId:  input.BidderId,
		Amount:    input.Amount,
		Seq:       a.BidCount,
		CreatedAt: at,
	}
	f.bids = append(f.bids, bid)

	return &bid, nil
}

func (f *fakeStore) GetAuctionBids(_ context.Context, auctionId uuid.UUID) ([]entity.LedgerEntry, error) {
	bids := f.ledger(auctionId)

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.LedgerEntry, 0, len(bids))
	for _, b := range bids {
		entry := entity.LedgerEntry{Bid: b}
		if u, ok := f.users[b.BidderId]; ok {
			entry.BidderUsername = u.Username
		}
		out = append(out, entry)
	}

	return out, nil
}

func (f *fakeStore) GetHighestBid(_ context.Context, auctionId uuid.UUID) (*entity.Bid, error) {
	bids := f.ledger(auctionId)
	if len(bids) == 0 {
		return nil, repo_errors.ErrNotFound
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(highest.Amount) {
			highest = b
		}
	}

	return &highest, nil
}

func (f *fakeStore) CreateComment(_ context.Context, comment *entity.Comment) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := *comment
	c.Id = uuid.New()
	f.comments = append(f.comments, c)

	return c.Id, nil
}

func (f *fakeStore) GetAuctionComments(_ context.Context, auctionId uuid.UUID, _ *entity.PaginationInput) ([]entity.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.Comment, 0)
	for _, c := range f.comments {
		if c.AuctionId == auctionId {
			out = append(out, c)
		}
	}

	return out, nil
}

func (f *fakeStore) AddCartEntry(_ context.Context, userId uuid.UUID, auctionId uuid.UUID, at time.Time) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a, ok := f.auctions[auctionId]
	if !ok {
		return uuid.Nil, repo_errors.ErrNotFound
	}
	entry := entity.CartEntry{
		Id:           uuid.New(),
		UserId:       userId,
		AuctionId:    auctionId,
		AuctionTitle: a.Title,
		Amount:       a.CurrentPrice(),
		CreatedAt:    at,
	}
	f.cart = append(f.cart, entry)

	return entry.Id, nil
}

func (f *fakeStore) GetUserCart(_ context.Context, userId uuid.UUID, _ *entity.PaginationInput) ([]entity.CartEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.CartEntry, 0)
	for _, e := range f.cart {
		if e.UserId == userId {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (f *fakeStore) GetLatestCartEntry(ctx context.Context, userId uuid.UUID, auctionId uuid.UUID) (*entity.CartEntry, error) {
	entries, _ := f.GetUserCart(ctx, userId, nil)
	for _, e := range entries {
		if e.AuctionId == auctionId {
			return &e, nil
		}
	}

	return nil, repo_errors.ErrNotFound
}

// mockAuctionRepo lets a test make single repository calls fail.
type mockAuctionRepo struct {
	repo.Auction
	mock.Mock
}

func (m *mockAuctionRepo) GetAuctionsByStatuses(ctx context.Context, statuses []common.AuctionStatus) ([]entity.Auction, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Auction), args.Error(1)
}

func (m *mockAuctionRepo) UpdateAuctionStatus(ctx context.Context, id uuid.UUID, from common.AuctionStatus, to common.AuctionStatus, at time.Time) (bool, error) {
	args := m.Called(ctx, id, from, to, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuctionRepo) GetAuctionById(ctx context.Context, id uuid.UUID) (*entity.Auction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Auction), args.Error(1)
}

type mockBidRepo struct {
	repo.Bid
	mock.Mock
}

func (m *mockBidRepo) AcceptBid(ctx context.Context, input *entity.AcceptBidInput) (*entity.Bid, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Bid), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event *entity.AuctionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// recordingPublisher keeps every event it is given.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.AuctionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *entity.AuctionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, *event)

	return nil
}

func (p *recordingPublisher) all() []entity.AuctionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]entity.AuctionEvent(nil), p.events...)
}
