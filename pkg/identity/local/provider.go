// Package local is a self-hosted identity provider backed by the auth_users
// table. It mirrors GoTrue's responses and error wording so the rest of the
// app cannot tell the two apart.
package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/pkg/mailer"
	"oracle-assistant-be/internal/repository/specification"
	"oracle-assistant-be/internal/repository/unitofwork"
	"oracle-assistant-be/pkg/identity"

	"golang.org/x/crypto/bcrypt"
)

var (
	errInvalidCredentials = &identity.Error{Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}
	errNotConfirmed       = &identity.Error{Status: http.StatusBadRequest, Code: "email_not_confirmed", Message: "Email not confirmed"}
	errUserExists         = &identity.Error{Status: http.StatusUnprocessableEntity, Code: "user_already_exists", Message: "User already registered"}
	errInvalidToken       = &identity.Error{Status: http.StatusUnauthorized, Code: "bad_jwt", Message: "Invalid token"}
	errLinkInvalid        = &identity.Error{Status: http.StatusForbidden, Code: "otp_expired", Message: "Email link is invalid or has expired"}
)

type Provider struct {
	uowFactory  unitofwork.RepositoryFactory
	tokens      *identity.TokenService
	mailer      mailer.IEmailService
	callbackURL string // absolute URL of the confirmation callback route
	autoConfirm bool
}

var (
	_ identity.Gateway   = (*Provider)(nil)
	_ identity.Confirmer = (*Provider)(nil)
)

func NewProvider(
	uowFactory unitofwork.RepositoryFactory,
	tokens *identity.TokenService,
	emailService mailer.IEmailService,
	callbackURL string,
	autoConfirm bool,
) *Provider {
	return &Provider{
		uowFactory:  uowFactory,
		tokens:      tokens,
		mailer:      emailService,
		callbackURL: callbackURL,
		autoConfirm: autoConfirm,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) SignUp(ctx context.Context, email, password, redirectTo string) (*identity.SignUpResult, error) {
	email = normalizeEmail(email)
	uow := p.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.AuthUserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return nil, errUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.LocalUser{Email: email, PasswordHash: string(hash)}
	var confirmToken string
	if p.autoConfirm {
		now := time.Now()
		user.EmailConfirmedAt = &now
	} else {
		confirmToken, err = randomToken()
		if err != nil {
			return nil, err
		}
		user.ConfirmationToken = &confirmToken
	}

	// The row only survives once the confirmation link is on its way, so a failed
	// send leaves the address free for a retry.
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin sign-up: %w", err)
	}
	if err := uow.AuthUserRepository().Create(ctx, user); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("create user: %w", err)
	}
	authUser := entity.AuthUser{Id: user.Id, Email: user.Email}

	if !p.autoConfirm {
		if err := p.mailer.SendConfirmation(email, p.confirmLink(confirmToken, redirectTo)); err != nil {
			_ = uow.Rollback()
			return nil, fmt.Errorf("send confirmation: %w", err)
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit sign-up: %w", err)
	}

	if p.autoConfirm {
		session, err := p.tokens.Issue(authUser)
		if err != nil {
			return nil, err
		}
		return &identity.SignUpResult{User: authUser, Session: session}, nil
	}
	return &identity.SignUpResult{User: authUser, ConfirmationRequired: true}, nil
}

func (p *Provider) confirmLink(token, redirectTo string) string {
	q := url.Values{}
	q.Set("token", token)
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return p.callbackURL + "?" + q.Encode()
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.AuthUserRepository().FindOne(ctx, specification.ByEmail{Email: normalizeEmail(email)})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.Confirmed() {
		return nil, errNotConfirmed
	}

	return p.tokens.Issue(entity.AuthUser{Id: user.Id, Email: user.Email})
}

// SignOut has nothing to revoke: tokens are stateless and simply expire.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	if _, err := p.tokens.Verify(accessToken); err != nil {
		return errInvalidToken
	}
	return nil
}

func (p *Provider) GetUser(ctx context.Context, accessToken string) (*entity.AuthUser, error) {
	claimed, err := p.tokens.Verify(accessToken)
	if err != nil {
		return nil, errInvalidToken
	}
	return p.loadConfirmed(ctx, claimed)
}

func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*entity.AuthSession, error) {
	claimed, err := p.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, &identity.Error{Status: http.StatusBadRequest, Code: "refresh_token_not_found", Message: "Invalid Refresh Token: Refresh Token Not Found"}
	}
	user, err := p.loadConfirmed(ctx, claimed)
	if err != nil {
		return nil, err
	}
	return p.tokens.Issue(*user)
}

// Confirm redeems a confirmation link and signs the user in.
func (p *Provider) Confirm(ctx context.Context, token string) (*entity.AuthSession, error) {
	if token == "" {
		return nil, errLinkInvalid
	}
	uow := p.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.AuthUserRepository().FindOne(ctx, specification.ByConfirmationToken{Token: token})
	if err != nil {
		return nil, fmt.Errorf("lookup confirmation: %w", err)
	}
	if user == nil {
		return nil, errLinkInvalid
	}

	now := time.Now()
	user.EmailConfirmedAt = &now
	user.ConfirmationToken = nil
	if err := uow.AuthUserRepository().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("confirm user: %w", err)
	}

	return p.tokens.Issue(entity.AuthUser{Id: user.Id, Email: user.Email})
}

func (p *Provider) loadConfirmed(ctx context.Context, claimed *entity.AuthUser) (*entity.AuthUser, error) {
	uow := p.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.AuthUserRepository().FindOne(ctx, specification.ByID{ID: claimed.Id})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.Confirmed() {
		return nil, &identity.Error{Status: http.StatusNotFound, Code: "user_not_found", Message: "User from sub claim in JWT does not exist"}
	}
	return &entity.AuthUser{Id: user.Id, Email: user.Email}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
