package service

import (
	"context"
	"net/http"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/repository/memory"
	"oracle-assistant-be/pkg/events"
	"oracle-assistant-be/pkg/identity"
)

type IAuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SignUpResponse, error)
	SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error)
	SignOut(ctx context.Context, user entity.AuthUser, accessToken string) error
	CurrentSession(ctx context.Context, accessToken string) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error)
	Confirm(ctx context.Context, token string) (*dto.AuthResponse, error)
}

type authService struct {
	gateway     identity.Gateway
	authChannel *events.AuthChannel
	workspaces  *memory.WorkspaceRepository
	workspace   IWorkspaceService
	presenter   *Presenter
	redirectURL string
	logger      logger.ILogger
}

func NewAuthService(
	gateway identity.Gateway,
	authChannel *events.AuthChannel,
	workspaces *memory.WorkspaceRepository,
	workspaceService IWorkspaceService,
	presenter *Presenter,
	redirectURL string,
	log logger.ILogger,
) IAuthService {
	return &authService{
		gateway:     gateway,
		authChannel: authChannel,
		workspaces:  workspaces,
		workspace:   workspaceService,
		presenter:   presenter,
		redirectURL: redirectURL,
		logger:      log,
	}
}

// authFailure keeps the provider's wording and hides anything else behind a generic message.
func (s *authService) authFailure(op string, status int, err error) error {
	if idErr, ok := identity.AsError(err); ok {
		s.logger.Warn("AUTH", "Identity provider rejected request", map[string]interface{}{
			"op":     op,
			"status": idErr.Status,
			"code":   idErr.Code,
		})
		return &AuthError{Status: status, Message: idErr.Message, Err: err}
	}

	s.logger.Error("AUTH", "Identity provider call failed", map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	})
	return &AuthError{Status: http.StatusBadGateway, Message: MessageUnexpectedAuth, Err: err}
}

func (s *authService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.SignUpResponse, error) {
	res, err := s.gateway.SignUp(ctx, req.Email, req.Password, s.redirectURL)
	if err != nil {
		return nil, s.authFailure("sign_up", http.StatusBadRequest, err)
	}

	s.logger.Info("AUTH", "User signed up", map[string]interface{}{
		"user_id":               res.User.Id.String(),
		"confirmation_required": res.ConfirmationRequired,
	})

	out := &dto.SignUpResponse{
		Message:              MessageSignUpConfirm,
		ConfirmationRequired: res.ConfirmationRequired,
	}
	if res.Session != nil {
		auth, err := s.enter(ctx, events.SignedIn, res.Session)
		if err != nil {
			return nil, err
		}
		out.Auth = auth
	}
	return out, nil
}

func (s *authService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error) {
	session, err := s.gateway.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.authFailure("sign_in", http.StatusUnauthorized, err)
	}

	s.logger.Info("AUTH", "User signed in", map[string]interface{}{
		"user_id": session.User.Id.String(),
	})
	return s.enter(ctx, events.SignedIn, session)
}

// enter announces the change and returns the view the listener has built by then.
func (s *authService) enter(ctx context.Context, change events.AuthChangeType, session *entity.AuthSession) (*dto.AuthResponse, error) {
	if err := s.authChannel.Publish(events.AuthStateChange{
		Type:   change,
		UserID: session.User.Id,
		Email:  session.User.Email,
	}); err != nil {
		return nil, err
	}

	state, _ := s.workspaces.GetOrCreate(session.User)
	return &dto.AuthResponse{
		Session: &dto.SessionTokens{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			ExpiresAt:    session.ExpiresAt,
		},
		User:      dto.UserView{Id: session.User.Id, Email: session.User.Email},
		Workspace: s.presenter.View(state),
	}, nil
}

// SignOut always clears local state, even when the provider call fails.
func (s *authService) SignOut(ctx context.Context, user entity.AuthUser, accessToken string) error {
	if err := s.gateway.SignOut(ctx, accessToken); err != nil {
		s.logger.Warn("AUTH", "Provider sign-out failed, clearing local state anyway", map[string]interface{}{
			"user_id": user.Id.String(),
			"error":   err.Error(),
		})
	}

	return s.authChannel.Publish(events.AuthStateChange{
		Type:   events.SignedOut,
		UserID: user.Id,
		Email:  user.Email,
	})
}

func (s *authService) CurrentSession(ctx context.Context, accessToken string) (*dto.AuthResponse, error) {
	user, err := s.gateway.GetUser(ctx, accessToken)
	if err != nil {
		return nil, s.authFailure("get_user", http.StatusUnauthorized, err)
	}

	view, err := s.workspace.View(ctx, *user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		User:      dto.UserView{Id: user.Id, Email: user.Email},
		Workspace: view,
	}, nil
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	session, err := s.gateway.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.authFailure("refresh", http.StatusUnauthorized, err)
	}
	return s.enter(ctx, events.TokenRefreshed, session)
}

func (s *authService) Confirm(ctx context.Context, token string) (*dto.AuthResponse, error) {
	confirmer, ok := s.gateway.(identity.Confirmer)
	if !ok {
		return nil, &AuthError{Status: http.StatusNotFound, Message: "Email confirmation is handled by the identity provider."}
	}

	session, err := confirmer.Confirm(ctx, token)
	if err != nil {
		return nil, s.authFailure("confirm", http.StatusBadRequest, err)
	}
	return s.enter(ctx, events.SignedIn, session)
}
