package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserId   uuid.UUID
	Username string
}

// db model
type User struct {
	Id                 uuid.UUID `json:"id" db:"id"`
	Username           string    `json:"username" db:"username"`
	Email              string    `json:"email" db:"email"`
	Name               string    `json:"name" db:"name"`
	About              string    `json:"about" db:"about"`
	ProfileImage       string    `json:"profileImage" db:"profile_image"`
	PasswordHash       string    `json:"-" db:"password_hash"`
	SecurityQuestion   string    `json:"-" db:"security_question"`
	SecurityAnswerHash string    `json:"-" db:"security_answer_hash"`
	CreatedAt          time.Time `json:"createdAt" db:"created_at"`
}

// service input model
type RegisterUserInput struct {
	Username         string
	Email            string
	ConfirmEmail     string
	Password         string
	ConfirmPassword  string
	SecurityQuestion string
	SecurityAnswer   string
}

// service input model
type LoginInput struct {
	Username string
	Password string
}

// service input model
type ResetPasswordInput struct {
	Username         string
	SecurityQuestion string
	SecurityAnswer   string
	Password         string
	ConfirmPassword  string
}

// service input model
type VerifySecurityAnswerInput struct {
	Username         string
	SecurityQuestion string
	SecurityAnswer   string
}

// service + repo input model
type UpdateProfileInput struct {
	Name         string
	Email        string
	About        string
	ProfileImage string
}

// controller model
type UserOutputModel struct {
	Id           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	About        string `json:"about"`
	ProfileImage string `json:"profileImage"`
	CreatedAt    string `json:"createdAt"`
}

// controller model
type UserSummaryOutputModel struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// controller model
type SessionOutputModel struct {
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expiresAt"`
	User      UserOutputModel `json:"user"`
}
