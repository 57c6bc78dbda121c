package controller

import (
	"net/http"

	"artbid-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type commentRoutesHandler struct {
	commentService service.Comment
	validate       *validator.Validate
}

func newCommentRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *commentRoutesHandler {
	h := &commentRoutesHandler{commentService: services.Comment, validate: v}

	outer.POST("/auctions/:auctionId/comments", h.PostComment)
	outer.GET("/auctions/:auctionId/comments", h.GetComments)

	return h
}

type postCommentInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

func (h *commentRoutesHandler) PostComment(c echo.Context) error {
	var input postCommentInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	comment, err := h.commentService.AddComment(c.Request().Context(), c.Param("auctionId"), currentUser(c), input.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, comment)
}

func (h *commentRoutesHandler) GetComments(c echo.Context) error {
	input := newPaginationInput()
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	comments, err := h.commentService.GetComments(c.Request().Context(), c.Param("auctionId"), input.toEntity())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, comments)
}
