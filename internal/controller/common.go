package controller

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"artbid-api/internal/entity"
	"artbid-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit  = 20
	defaultOffset = 0

	identityKey = "identity"
)

type errorResponse struct {
	Reason        string           `json:"reason"`
	MinimumToBeat *decimal.Decimal `json:"minimumToBeat,omitempty"`
	Retryable     bool             `json:"retryable,omitempty"`
}

type paginationInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=100"`
	Offset int32 `query:"offset" validate:"gte=0"`
}

func newPaginationInput() paginationInput {
	return paginationInput{Limit: defaultLimit, Offset: defaultOffset}
}

func (p paginationInput) toEntity() *entity.PaginationInput {
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}

	return entity.NewPaginationInput(int(p.Limit), int(p.Offset))
}

// currentUser returns the identity the session middleware attached, if any.
func currentUser(c echo.Context) *entity.Identity {
	identity, _ := c.Get(identityKey).(*entity.Identity)

	return identity
}

// bindAndValidate writes a 400 response and returns false when input can't
// be used.
func bindAndValidate(c echo.Context, v *validator.Validate, input interface{}) (bool, error) {
	if err := c.Bind(input); err != nil {
		return false, c.JSON(http.StatusBadRequest, errorResponse{Reason: "Input data is not formed correctly"})
	}

	if err := v.Struct(input); err != nil {
		return false, c.JSON(http.StatusBadRequest, errorResponse{Reason: getAllErrorMessages(err)})
	}

	return true, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrAuctionNotFound), errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrOwnBid), errors.Is(err, service.ErrCartNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, service.ErrWindowClosed), errors.Is(err, service.ErrBidTooLow),
		errors.Is(err, service.ErrAuctionLocked), errors.Is(err, service.ErrAuctionFinished),
		errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidationFailed), errors.Is(err, service.ErrNoNewChanges):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPersistenceFailure), errors.Is(err, service.ErrEventsUnavailable):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// respondError maps a service error onto a status code and a reason.
func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	resp := errorResponse{Reason: err.Error()}

	var tooLow *service.BidTooLowError
	if errors.As(err, &tooLow) {
		minimum := tooLow.MinimumToBeat
		resp.MinimumToBeat = &minimum
	}

	switch status {
	case http.StatusServiceUnavailable:
		resp.Reason = service.ErrPersistenceFailure.Error()
		if errors.Is(err, service.ErrEventsUnavailable) {
			resp.Reason = service.ErrEventsUnavailable.Error()
		}
		resp.Retryable = true
	case http.StatusInternalServerError:
		c.Logger().Error(err)
		resp.Reason = "Internal error"
	}

	return c.JSON(status, resp)
}

func getAllErrorMessages(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	var builder strings.Builder
	for _, fe := range validationErrors {
		message := fmt.Sprintf("'%s': %s\n", fe.Field(), getMessage(fe))
		builder.WriteString(message)
	}

	return builder.String()
}

func getMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "this field is required"
	}

	s, i := "", int32(0)
	if fe.Type() == reflect.TypeOf(s) || fe.Type() == reflect.TypeOf(&s) {
		return getMessageForString(fe)
	}

	if fe.Type() == reflect.TypeOf(i) || fe.Type() == reflect.TypeOf(0) {
		return getMessageForInt(fe)
	}

	return "incorrect value passed"
}

func getMessageForInt(fe validator.FieldError) string {
	switch fe.Tag() {
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	}

	return "incorrect value passed"
}

func getMessageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "email":
		return "should be a valid email"
	case "eqfield":
		return "should match " + fe.Param()
	case "datetime":
		return "should match layout " + fe.Param()
	case "uuid":
		return "should be a valid uuid"
	}

	return "incorrect value passed"
}
