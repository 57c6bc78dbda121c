package controller

import (
	"net/http"

	"artbid-api/internal/entity"
	"artbid-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type bidRoutesHandler struct {
	bidService service.Bid
	validate   *validator.Validate
}

func newBidRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *bidRoutesHandler {
	h := &bidRoutesHandler{bidService: services.Bid, validate: v}

	outer.POST("/auctions/:auctionId/bids", h.PostBid)
	outer.GET("/auctions/:auctionId/bids", h.GetAuctionBids)

	return h
}

type postBidInput struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

// /auctions/:auctionId/bids
func (h *bidRoutesHandler) PostBid(c echo.Context) error {
	var input postBidInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	bid, err := h.bidService.SubmitBid(c.Request().Context(), &entity.SubmitBidInput{
		AuctionId: c.Param("auctionId"),
		Bidder:    currentUser(c),
		Amount:    *input.Amount,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, bid)
}

func (h *bidRoutesHandler) GetAuctionBids(c echo.Context) error {
	bids, err := h.bidService.GetAuctionBids(c.Request().Context(), c.Param("auctionId"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, bids)
}
