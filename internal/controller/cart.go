package controller

import (
	"net/http"

	"artbid-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type cartRoutesHandler struct {
	cartService service.Cart
	validate    *validator.Validate
}

func newCartRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *cartRoutesHandler {
	h := &cartRoutesHandler{cartService: services.Cart, validate: v}

	outer.POST("/cart", h.PostCartEntry)
	outer.GET("/cart", h.GetCart)

	return h
}

type postCartEntryInput struct {
	AuctionId string `json:"auctionId" validate:"required,uuid"`
}

func (h *cartRoutesHandler) PostCartEntry(c echo.Context) error {
	var input postCartEntryInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	entry, err := h.cartService.AddToCart(c.Request().Context(), currentUser(c), input.AuctionId)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, entry)
}

func (h *cartRoutesHandler) GetCart(c echo.Context) error {
	input := newPaginationInput()
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	entries, err := h.cartService.GetCart(c.Request().Context(), currentUser(c), input.toEntity())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, entries)
}
