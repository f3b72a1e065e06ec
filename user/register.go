package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/deadlinr/backend/logger"
	deadlinrmail "github.com/deadlinr/backend/mail"
	"github.com/deadlinr/backend/user/auth"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 2
	maxUsernameLength = 32
	maxEmailLength    = 320
	minPasswordLength = 8
	maxPasswordLength = 1024
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type RegisterParams struct {
	Username string    `validate:"min=2,max=32"`
	Email    string    `validate:"required,max=320,email"`
	Password string    `validate:"min=8,max=1024"`
	Role     auth.Role `validate:"oneof=user moderator"`
}

func (p RegisterParams) validate() error {
	err := validate.Struct(p)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "min" {
			return newErrUsernameTooShort(minUsernameLength)
		}
		return newErrUsernameTooLong(maxUsernameLength)
	case "Email":
		if fe.Tag() == "max" {
			return newErrEmailTooLong(maxEmailLength)
		}
		return newErrEmailInvalid()
	case "Password":
		if fe.Tag() == "min" {
			return newErrPasswordTooShort(minPasswordLength)
		}
		return newErrPasswordTooLong()
	case "Role":
		return newErrInvalidRole()
	}
	return fmt.Errorf("validating registration: %w", err)
}

// Register creates an unverified profile and emails a verification link.
// A failed email is logged and does not fail the registration.
func (s *UserSrvc) Register(ctx context.Context, p RegisterParams) (User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if p.Role == "" {
		p.Role = auth.RoleUser
	}
	if err := p.validate(); err != nil {
		return User{}, err
	}

	usernameTaken, emailTaken, err := s.repo.taken(ctx, p.Username, p.Email)
	if err != nil {
		return User{}, mapRepoErr(err)
	}
	if usernameTaken {
		return User{}, newErrUsernameExists()
	}
	if emailTaken {
		return User{}, newErrEmailExists()
	}

	bcryptPwd, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	row := userRow{
		UUID:              uuid.New(),
		Username:          p.Username,
		Email:             p.Email,
		BcryptPwd:         string(bcryptPwd),
		Role:              string(p.Role),
		VerificationToken: &token,
		CreatedAt:         s.Now().UTC(),
	}
	// unique constraints still catch a concurrent registration
	if err := s.repo.insertUser(ctx, row); err != nil {
		return User{}, mapRepoErr(err)
	}

	log := logger.FromContext(ctx)
	log.Info("user registered", "user", row.UUID, "role", row.Role)

	err = s.mailer.Send(ctx, deadlinrmail.Message{
		To:      mail.Address{Name: row.Username, Address: row.Email},
		Subject: "Verify your email",
		Text:    "Open this link to verify your email address: " + s.VerifyURL + token,
	})
	if err != nil {
		log.Error("failed to send verification email", "user", row.UUID, "error", err)
	}

	return row.toUser(), nil
}

// VerifyEmail marks the profile owning token as verified.
func (s *UserSrvc) VerifyEmail(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, newErrInvalidVerificationToken()
	}
	row, err := s.repo.getByVerificationToken(ctx, token)
	if errors.Is(err, errNoUser) {
		return User{}, newErrInvalidVerificationToken()
	}
	if err != nil {
		return User{}, mapRepoErr(err)
	}

	now := s.Now().UTC()
	if err := s.repo.markVerified(ctx, row.UUID, now); err != nil {
		return User{}, mapRepoErr(err)
	}
	row.EmailVerifiedAt = &now
	return row.toUser(), nil
}
