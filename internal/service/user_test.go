package service

import (
	"context"
	"testing"
	"time"

	"artbid-api/internal/auth"
	"artbid-api/internal/clock"
	"artbid-api/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *auth.TokenManager) {
	t.Helper()

	clk := clock.NewManual(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	tokens := auth.NewTokenManager("secret", time.Hour, clk)
	svc := NewUserService(Dependencies{
		Repos:  newFakeStore().repos(),
		Clock:  clk,
		Tokens: tokens,
		Hasher: auth.NewPasswordHasher(bcrypt.MinCost),
	})

	return svc, tokens
}

func validRegisterInput() *entity.RegisterUserInput {
	return &entity.RegisterUserInput{
		Username:         "monet",
		Email:            "monet@giverny.fr",
		ConfirmEmail:     "monet@giverny.fr",
		Password:         "lilies",
		ConfirmPassword:  "lilies",
		SecurityQuestion: "First painting?",
		SecurityAnswer:   "Impression, Sunrise",
	}
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, tokens := newUserService(t)

	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, "monet", user.Username)

	_, err = svc.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, ErrUsernameTaken)

	session, err := svc.Login(context.Background(), &entity.LoginInput{Username: "monet", Password: "lilies"})
	require.NoError(t, err)
	assert.Equal(t, user.Id, session.User.Id)
	assert.Equal(t, "2024-06-01T13:00:00Z", session.ExpiresAt)

	identity, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "monet", identity.Username)

	_, err = svc.Login(context.Background(), &entity.LoginInput{Username: "monet", Password: "wrong!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &entity.LoginInput{Username: "manet", Password: "lilies"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *entity.RegisterUserInput)
	}{
		{name: "empty username", modify: func(in *entity.RegisterUserInput) { in.Username = " " }},
		{name: "emails differ", modify: func(in *entity.RegisterUserInput) { in.ConfirmEmail = "other@giverny.fr" }},
		{name: "passwords differ", modify: func(in *entity.RegisterUserInput) { in.ConfirmPassword = "lilies2" }},
		{name: "short password", modify: func(in *entity.RegisterUserInput) { in.Password, in.ConfirmPassword = "abc", "abc" }},
		{name: "missing answer", modify: func(in *entity.RegisterUserInput) { in.SecurityAnswer = "" }},
		{name: "bad email", modify: func(in *entity.RegisterUserInput) { in.Email, in.ConfirmEmail = "giverny", "giverny" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newUserService(t)
			input := validRegisterInput()
			tt.modify(input)

			_, err := svc.Register(context.Background(), input)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestUserService_ResetPassword(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	err = svc.ResetPassword(context.Background(), &entity.ResetPasswordInput{
		Username:         "monet",
		SecurityQuestion: "First painting?",
		SecurityAnswer:   "wrong",
		Password:         "haystacks",
		ConfirmPassword:  "haystacks",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ResetPassword(context.Background(), &entity.ResetPasswordInput{
		Username:         "monet",
		SecurityQuestion: "first painting?",
		SecurityAnswer:   "  impression, sunrise ",
		Password:         "haystacks",
		ConfirmPassword:  "haystacks",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &entity.LoginInput{Username: "monet", Password: "haystacks"})
	assert.NoError(t, err)
}

func TestUserService_VerifySecurityAnswer(t *testing.T) {
	svc, _ := newUserService(t)
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   entity.VerifySecurityAnswerInput
		wantErr error
	}{
		{
			name:  "matching answer",
			input: entity.VerifySecurityAnswerInput{Username: "monet", SecurityQuestion: "FIRST PAINTING?", SecurityAnswer: "impression, sunrise"},
		},
		{
			name:    "wrong answer",
			input:   entity.VerifySecurityAnswerInput{Username: "monet", SecurityQuestion: "First painting?", SecurityAnswer: "Water Lilies"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "wrong question",
			input:   entity.VerifySecurityAnswerInput{Username: "monet", SecurityQuestion: "Favourite garden?", SecurityAnswer: "Impression, Sunrise"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "unknown user",
			input:   entity.VerifySecurityAnswerInput{Username: "manet", SecurityQuestion: "First painting?", SecurityAnswer: "Impression, Sunrise"},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.VerifySecurityAnswer(context.Background(), &tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	// verification alone leaves the password untouched
	_, err = svc.Login(context.Background(), &entity.LoginInput{Username: "monet", Password: "lilies"})
	assert.NoError(t, err)
}

func TestUserService_Profile(t *testing.T) {
	svc, _ := newUserService(t)
	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), &entity.LoginInput{Username: "monet", Password: "lilies"})
	require.NoError(t, err)
	caller := &entity.Identity{UserId: uuid.MustParse(session.User.Id), Username: "monet"}

	_, err = svc.UpdateProfile(context.Background(), caller, &entity.UpdateProfileInput{})
	assert.ErrorIs(t, err, ErrNoNewChanges)

	_, err = svc.UpdateProfile(context.Background(), caller, &entity.UpdateProfileInput{Email: "nope"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	updated, err := svc.UpdateProfile(context.Background(), caller, &entity.UpdateProfileInput{Name: "Oscar Monet", About: "Painter"})
	require.NoError(t, err)
	assert.Equal(t, "Oscar Monet", updated.Name)
	assert.Equal(t, user.Email, updated.Email)

	profile, err := svc.GetProfile(context.Background(), caller)
	require.NoError(t, err)
	assert.Equal(t, "Painter", profile.About)

	_, err = svc.GetProfile(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
