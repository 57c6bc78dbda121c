package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"artbid-api/internal/clock"
	"artbid-api/internal/common"
	"artbid-api/internal/entity"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"

	"github.com/google/uuid"
)

const maxCommentLength = 1000

type CommentService struct {
	auctionRepo repo.Auction
	commentRepo repo.Comment
	clock       clock.Clock
}

func NewCommentService(deps Dependencies) *CommentService {
	deps = deps.withDefaults()

	return &CommentService{
		auctionRepo: deps.Repos.Auction,
		commentRepo: deps.Repos.Comment,
		clock:       deps.Clock,
	}
}

func (s *CommentService) visibleAuction(ctx context.Context, auctionId string) (*entity.Auction, error) {
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

	return auction, nil
}

func (s *CommentService) AddComment(ctx context.Context, auctionId string, author *entity.Identity, content string) (*entity.CommentOutputModel, error) {
	auction, err := s.visibleAuction(ctx, auctionId)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, ErrUnauthorized
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("comment is empty")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, validationError("comment must be at most %d characters", maxCommentLength)
	}

	comment := &entity.Comment{
		AuctionId:      auction.Id,
		AuthorId:       author.UserId,
		AuthorUsername: author.Username,
		Content:        content,
		CreatedAt:      s.clock.Now(),
	}

	id, err := s.commentRepo.CreateComment(ctx, comment)
	if err != nil {
		return nil, persistenceError(err)
	}
	comment.Id = id

	return mapComment(comment), nil
}

func (s *CommentService) GetComments(ctx context.Context, auctionId string, pg *entity.PaginationInput) ([]entity.CommentOutputModel, error) {
	auction, err := s.visibleAuction(ctx, auctionId)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetAuctionComments(ctx, auction.Id, pg)
	if err != nil {
		return nil, persistenceError(err)
	}

	return mapComments(comments), nil
}
