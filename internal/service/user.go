package service

import (
	"context"
	"errors"
	"strings"

	"artbid-api/internal/auth"
	"artbid-api/internal/clock"
	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"
	"artbid-api/internal/repo"
	"artbid-api/internal/repo/repo_errors"

	"github.com/go-playground/validator/v10"
)

const minPasswordLength = 6

var validate = validator.New()

type UserService struct {
	userRepo repo.User
	tokens   *auth.TokenManager
	hasher   *auth.PasswordHasher
	clock    clock.Clock
	log      logger.Logger
}

func NewUserService(deps Dependencies) *UserService {
	deps = deps.withDefaults()

	return &UserService{
		userRepo: deps.Repos.User,
		tokens:   deps.Tokens,
		hasher:   deps.Hasher,
		clock:    deps.Clock,
		log:      deps.Logger.With("component", "users"),
	}
}

func validateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return validationError("email is not valid")
	}

	return nil
}

func (s *UserService) Register(ctx context.Context, input *entity.RegisterUserInput) (*entity.UserOutputModel, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	switch {
	case username == "":
		return nil, validationError("username is required")
	case email != strings.TrimSpace(input.ConfirmEmail):
		return nil, validationError("emails don't match")
	case input.Password != input.ConfirmPassword:
		return nil, validationError("passwords don't match")
	case len(input.Password) < minPasswordLength:
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	case strings.TrimSpace(input.SecurityQuestion) == "" || strings.TrimSpace(input.SecurityAnswer) == "":
		return nil, validationError("security question and answer are required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	answerHash, err := s.hasher.Hash(normalizeAnswer(input.SecurityAnswer))
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:           username,
		Email:              email,
		PasswordHash:       passwordHash,
		SecurityQuestion:   strings.TrimSpace(input.SecurityQuestion),
		SecurityAnswerHash: answerHash,
		CreatedAt:          s.clock.Now(),
	}

	id, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repo_errors.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}

		return nil, persistenceError(err)
	}
	user.Id = id

	s.log.Infow("user registered", "user_id", id.String())

	return mapUser(user), nil
}

func (s *UserService) Login(ctx context.Context, input *entity.LoginInput) (*entity.SessionOutputModel, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, persistenceError(err)
	}

	if !s.hasher.Matches(user.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(&entity.Identity{UserId: user.Id, Username: user.Username})
	if err != nil {
		return nil, err
	}

	return &entity.SessionOutputModel{
		Token:     token,
		ExpiresAt: formatTime(expiresAt),
		User:      *mapUser(user),
	}, nil
}

// VerifySecurityAnswer is the first step of a password reset: it only
// confirms that the user exists and answered their question correctly.
func (s *UserService) VerifySecurityAnswer(ctx context.Context, input *entity.VerifySecurityAnswerInput) error {
	_, err := s.checkSecurityAnswer(ctx, input)

	return err
}

func (s *UserService) checkSecurityAnswer(ctx context.Context, input *entity.VerifySecurityAnswerInput) (*entity.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, persistenceError(err)
	}

	if !strings.EqualFold(strings.TrimSpace(input.SecurityQuestion), user.SecurityQuestion) ||
		!s.hasher.Matches(user.SecurityAnswerHash, normalizeAnswer(input.SecurityAnswer)) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ResetPassword replaces the password of a user who answers their security
// question correctly.
func (s *UserService) ResetPassword(ctx context.Context, input *entity.ResetPasswordInput) error {
	if input.Password != input.ConfirmPassword {
		return validationError("passwords don't match")
	}
	if len(input.Password) < minPasswordLength {
		return validationError("password must be at least %d characters", minPasswordLength)
	}

	user, err := s.checkSecurityAnswer(ctx, &entity.VerifySecurityAnswerInput{
		Username:         input.Username,
		SecurityQuestion: input.SecurityQuestion,
		SecurityAnswer:   input.SecurityAnswer,
	})
	if err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.Id, passwordHash); err != nil {
		return persistenceError(err)
	}

	return nil
}

func (s *UserService) GetProfile(ctx context.Context, caller *entity.Identity) (*entity.UserOutputModel, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetUserById(ctx, caller.UserId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, persistenceError(err)
	}

	return mapUser(user), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller *entity.Identity, input *entity.UpdateProfileInput) (*entity.UserOutputModel, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetUserById(ctx, caller.UserId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, persistenceError(err)
	}

	changes := entity.UpdateProfileInput{
		Name:         user.Name,
		Email:        user.Email,
		About:        user.About,
		ProfileImage: user.ProfileImage,
	}
	if input.Name != "" {
		changes.Name = strings.TrimSpace(input.Name)
	}
	if input.Email != "" {
		if err := validateEmail(input.Email); err != nil {
			return nil, err
		}
		changes.Email = strings.TrimSpace(input.Email)
	}
	if input.About != "" {
		changes.About = input.About
	}
	if input.ProfileImage != "" {
		changes.ProfileImage = strings.TrimSpace(input.ProfileImage)
	}
	if changes == (entity.UpdateProfileInput{Name: user.Name, Email: user.Email, About: user.About, ProfileImage: user.ProfileImage}) {
		return nil, ErrNoNewChanges
	}

	if err := s.userRepo.UpdateProfile(ctx, user.Id, &changes); err != nil {
		return nil, persistenceError(err)
	}

	user.Name, user.Email, user.About, user.ProfileImage = changes.Name, changes.Email, changes.About, changes.ProfileImage

	return mapUser(user), nil
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
