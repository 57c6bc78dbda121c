package controller

import (
	"net/http"

	"artbid-api/internal/entity"
	"artbid-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

type auctionRoutesHandler struct {
	auctionService service.Auction
	queryService   service.Query
	validate       *validator.Validate
}

func newAuctionRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *auctionRoutesHandler {
	h := &auctionRoutesHandler{auctionService: services.Auction, queryService: services.Query, validate: v}

	outer.GET("/auctions", h.BrowseAuctions)
	outer.GET("/auctions/my", h.GetMyAuctions)
	outer.GET("/auctions/past", h.GetPastAuctions)
	outer.POST("/auctions/new", h.PostAuction)
	outer.GET("/auctions/:auctionId", h.GetAuction)
	outer.PATCH("/auctions/:auctionId/edit", h.EditAuction)
	outer.DELETE("/auctions/:auctionId", h.DeleteAuction)

	return h
}

type browseAuctionsInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=100"`
	Offset int32 `query:"offset" validate:"gte=0"`
	Open   bool  `query:"open"`
}

// /auctions
func (h *auctionRoutesHandler) BrowseAuctions(c echo.Context) error {
	input := browseAuctionsInput{Limit: defaultLimit, Offset: defaultOffset}
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	pg := paginationInput{Limit: input.Limit, Offset: input.Offset}
	auctions, err := h.queryService.BrowseAuctions(c.Request().Context(), input.Open, pg.toEntity())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, auctions)
}

// /auctions/my
func (h *auctionRoutesHandler) GetMyAuctions(c echo.Context) error {
	input := newPaginationInput()
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	auctions, err := h.queryService.GetMyAuctions(c.Request().Context(), currentUser(c), input.toEntity())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, auctions)
}

// /auctions/past
func (h *auctionRoutesHandler) GetPastAuctions(c echo.Context) error {
	input := newPaginationInput()
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	auctions, err := h.queryService.GetPastAuctions(c.Request().Context(), input.toEntity())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, auctions)
}

type postAuctionInput struct {
	Title       string           `json:"title" validate:"required,max=100"`
	Description string           `json:"description" validate:"required,max=1000"`
	Image       string           `json:"image" validate:"max=255"`
	MinBid      *decimal.Decimal `json:"minBid" validate:"required"`
	StartDate   string           `json:"startDate" validate:"required,datetime=2006-01-02"`
	StartTime   string           `json:"startTime" validate:"required,datetime=15:04"`
	EndDate     string           `json:"endDate" validate:"required,datetime=2006-01-02"`
	EndTime     string           `json:"endTime" validate:"required,datetime=15:04"`
}

// /auctions/new
func (h *auctionRoutesHandler) PostAuction(c echo.Context) error {
	identity := currentUser(c)
	if identity == nil {
		return respondError(c, service.ErrUnauthorized)
	}

	var input postAuctionInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	auction, err := h.auctionService.CreateAuction(c.Request().Context(), &entity.CreateAuctionInput{
		Owner:       identity,
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		MinBid:      *input.MinBid,
		StartDate:   input.StartDate,
		StartTime:   input.StartTime,
		EndDate:     input.EndDate,
		EndTime:     input.EndTime,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, auction)
}

// /auctions/:auctionId
func (h *auctionRoutesHandler) GetAuction(c echo.Context) error {
	detail, err := h.queryService.GetAuctionDetail(c.Request().Context(), c.Param("auctionId"), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, detail)
}

type editAuctionInput struct {
	Title       *string          `json:"title" validate:"omitempty,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Image       *string          `json:"image" validate:"omitempty,max=255"`
	MinBid      *decimal.Decimal `json:"minBid"`
	StartDate   *string          `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime   *string          `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndDate     *string          `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	EndTime     *string          `json:"endTime" validate:"omitempty,datetime=15:04"`
}

// /auctions/:auctionId/edit
func (h *auctionRoutesHandler) EditAuction(c echo.Context) error {
	var input editAuctionInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	auction, err := h.auctionService.EditAuction(c.Request().Context(), &entity.EditAuctionInput{
		AuctionId:   c.Param("auctionId"),
		Editor:      currentUser(c),
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		MinBid:      input.MinBid,
		StartDate:   input.StartDate,
		StartTime:   input.StartTime,
		EndDate:     input.EndDate,
		EndTime:     input.EndTime,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, auction)
}

func (h *auctionRoutesHandler) DeleteAuction(c echo.Context) error {
	if err := h.auctionService.DeleteAuction(c.Request().Context(), c.Param("auctionId"), currentUser(c)); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
