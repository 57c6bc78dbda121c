package service

import (
	"time"

	"artbid-api/internal/entity"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func mapAuction(a *entity.Auction) *entity.AuctionOutputModel {
	out := &entity.AuctionOutputModel{
		Id:           a.Id.String(),
		Title:        a.Title,
		Description:  a.Description,
		Image:        a.Image,
		OwnerId:      a.OwnerId.String(),
		MinBid:       a.MinBid,
		CurrentPrice: a.CurrentPrice(),
		StartAt:      formatTime(a.StartAt),
		EndAt:        formatTime(a.EndAt),
		Status:       a.Status.String(),
		BidCount:     a.BidCount,
		CreatedAt:    formatTime(a.CreatedAt),
	}
	if a.Leader != nil {
		out.Leader = &entity.LeaderOutputModel{
			BidderId: a.Leader.BidderId.String(),
			Amount:   a.Leader.Amount,
		}
	}

	return out
}

func mapListing(l *entity.AuctionListing) *entity.AuctionListingOutputModel {
	return &entity.AuctionListingOutputModel{
		AuctionOutputModel: *mapAuction(&l.Auction),
		Owner: entity.UserSummaryOutputModel{
			Id:       l.OwnerId.String(),
			Username: l.OwnerUsername,
			Name:     l.OwnerName,
		},
	}
}

func mapListings(listings []entity.AuctionListing) []entity.AuctionListingOutputModel {
	s := make([]entity.AuctionListingOutputModel, 0, len(listings))
	for i := range listings {
		s = append(s, *mapListing(&listings[i]))
	}

	return s
}

func mapBid(b *entity.Bid) *entity.BidOutputModel {
	return &entity.BidOutputModel{
		Id:        b.Id.String(),
		AuctionId: b.AuctionId.String(),
		BidderId:  b.BidderId.String(),
		Amount:    b.Amount,
		Seq:       b.Seq,
		CreatedAt: formatTime(b.CreatedAt),
	}
}

func mapLedger(entries []entity.LedgerEntry) []entity.BidOutputModel {
	s := make([]entity.BidOutputModel, 0, len(entries))
	for i := range entries {
		out := mapBid(&entries[i].Bid)
		out.BidderUsername = entries[i].BidderUsername
		s = append(s, *out)
	}

	return s
}

func mapUser(u *entity.User) *entity.UserOutputModel {
	return &entity.UserOutputModel{
		Id:           u.Id.String(),
		Username:     u.Username,
		Email:        u.Email,
		Name:         u.Name,
		About:        u.About,
		ProfileImage: u.ProfileImage,
		CreatedAt:    formatTime(u.CreatedAt),
	}
}

func mapUserSummary(u *entity.User) *entity.UserSummaryOutputModel {
	return &entity.UserSummaryOutputModel{
		Id:       u.Id.String(),
		Username: u.Username,
		Name:     u.Name,
	}
}

func mapComment(c *entity.Comment) *entity.CommentOutputModel {
	return &entity.CommentOutputModel{
		Id:             c.Id.String(),
		AuctionId:      c.AuctionId.String(),
		AuthorId:       c.AuthorId.String(),
		AuthorUsername: c.AuthorUsername,
		Content:        c.Content,
		CreatedAt:      formatTime(c.CreatedAt),
	}
}

func mapComments(comments []entity.Comment) []entity.CommentOutputModel {
	s := make([]entity.CommentOutputModel, 0, len(comments))
	for i := range comments {
		s = append(s, *mapComment(&comments[i]))
	}

	return s
}

func mapCartEntry(e *entity.CartEntry) *entity.CartEntryOutputModel {
	return &entity.CartEntryOutputModel{
		Id:           e.Id.String(),
		AuctionId:    e.AuctionId.String(),
		AuctionTitle: e.AuctionTitle,
		Amount:       e.Amount,
		CreatedAt:    formatTime(e.CreatedAt),
	}
}

func mapCartEntries(entries []entity.CartEntry) []entity.CartEntryOutputModel {
	s := make([]entity.CartEntryOutputModel, 0, len(entries))
	for i := range entries {
		s = append(s, *mapCartEntry(&entries[i]))
	}

	return s
}
