package controller

import (
	"net/http"

	"artbid-api/internal/entity"
	"artbid-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type userRoutesHandler struct {
	userService  service.User
	queryService service.Query
	validate     *validator.Validate
}

func newUserRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *userRoutesHandler {
	h := &userRoutesHandler{userService: services.User, queryService: services.Query, validate: v}

	outer.POST("/users/register", h.Register)
	outer.POST("/users/login", h.Login)
	outer.POST("/users/password/verify", h.VerifySecurityAnswer)
	outer.POST("/users/password/reset", h.ResetPassword)
	outer.GET("/users/me", h.GetProfile)
	outer.PATCH("/users/me", h.UpdateProfile)
	outer.GET("/users/:userId/auctions", h.GetUserAuctions)

	return h
}

type registerInput struct {
	Username         string `json:"username" validate:"required,min=3,max=50"`
	Email            string `json:"email" validate:"required,email,max=255"`
	ConfirmEmail     string `json:"confirmEmail" validate:"required,eqfield=Email"`
	Password         string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword  string `json:"confirmPassword" validate:"required,eqfield=Password"`
	SecurityQuestion string `json:"securityQuestion" validate:"required,max=255"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required,max=255"`
}

// /users/register
func (h *userRoutesHandler) Register(c echo.Context) error {
	var input registerInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	user, err := h.userService.Register(c.Request().Context(), &entity.RegisterUserInput{
		Username:         input.Username,
		Email:            input.Email,
		ConfirmEmail:     input.ConfirmEmail,
		Password:         input.Password,
		ConfirmPassword:  input.ConfirmPassword,
		SecurityQuestion: input.SecurityQuestion,
		SecurityAnswer:   input.SecurityAnswer,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, user)
}

type loginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// /users/login
func (h *userRoutesHandler) Login(c echo.Context) error {
	var input loginInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	session, err := h.userService.Login(c.Request().Context(), &entity.LoginInput{Username: input.Username, Password: input.Password})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, session)
}

type verifySecurityAnswerInput struct {
	Username         string `json:"username" validate:"required"`
	SecurityQuestion string `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required"`
}

// /users/password/verify
func (h *userRoutesHandler) VerifySecurityAnswer(c echo.Context) error {
	var input verifySecurityAnswerInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	err := h.userService.VerifySecurityAnswer(c.Request().Context(), &entity.VerifySecurityAnswerInput{
		Username:         input.Username,
		SecurityQuestion: input.SecurityQuestion,
		SecurityAnswer:   input.SecurityAnswer,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

type resetPasswordInput struct {
	Username         string `json:"username" validate:"required"`
	SecurityQuestion string `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required"`
	Password         string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword  string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// /users/password/reset
func (h *userRoutesHandler) ResetPassword(c echo.Context) error {
	var input resetPasswordInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	err := h.userService.ResetPassword(c.Request().Context(), &entity.ResetPasswordInput{
		Username:         input.Username,
		SecurityQuestion: input.SecurityQuestion,
		SecurityAnswer:   input.SecurityAnswer,
		Password:         input.Password,
		ConfirmPassword:  input.ConfirmPassword,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// /users/me
func (h *userRoutesHandler) GetProfile(c echo.Context) error {
	user, err := h.userService.GetProfile(c.Request().Context(), currentUser(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

type updateProfileInput struct {
	Name         string `json:"name" validate:"max=100"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	About        string `json:"about" validate:"max=1000"`
	ProfileImage string `json:"profileImage" validate:"max=255"`
}

func (h *userRoutesHandler) UpdateProfile(c echo.Context) error {
	var input updateProfileInput
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), currentUser(c), &entity.UpdateProfileInput{
		Name:         input.Name,
		Email:        input.Email,
		About:        input.About,
		ProfileImage: input.ProfileImage,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// /users/:userId/auctions
func (h *userRoutesHandler) GetUserAuctions(c echo.Context) error {
	input := newPaginationInput()
	if ok, err := bindAndValidate(c, h.validate, &input); !ok {
		return err
	}

	auctions, err := h.queryService.GetUserAuctions(c.Request().Context(), c.Param("userId"), input.toEntity())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, auctions)
}
