package service

import (
	"context"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/repository/memory"
	"oracle-assistant-be/pkg/events"
)

// AuthStateListener keeps workspaces in step with the auth state channel:
// sign-in and token refresh re-fetch the session list, sign-out wipes it.
type AuthStateListener struct {
	workspaces *memory.WorkspaceRepository
	sessions   ISessionService
	presenter  *Presenter
	logger     logger.ILogger
}

func NewAuthStateListener(
	workspaces *memory.WorkspaceRepository,
	sessions ISessionService,
	presenter *Presenter,
	log logger.ILogger,
) *AuthStateListener {
	return &AuthStateListener{
		workspaces: workspaces,
		sessions:   sessions,
		presenter:  presenter,
		logger:     log,
	}
}

// Listen subscribes to the channel until ctx is cancelled.
func (l *AuthStateListener) Listen(ctx context.Context, channel *events.AuthChannel) error {
	return channel.Subscribe(ctx, l.Handle)
}

func (l *AuthStateListener) Handle(ctx context.Context, change events.AuthStateChange) error {
	user := entity.AuthUser{Id: change.UserID, Email: change.Email}

	l.logger.Debug("AUTH", "Auth state changed", map[string]interface{}{
		"type":    string(change.Type),
		"user_id": change.UserID.String(),
	})

	switch change.Type {
	case events.SignedIn, events.TokenRefreshed:
		state, _ := l.workspaces.GetOrCreate(user)
		state.SetUser(&user)

		err := l.sessions.Refresh(ctx, state, user)
		l.presenter.Publish(user.Id, state)
		return err

	case events.SignedOut:
		if state, ok := l.workspaces.Get(user.Id); ok {
			state.Reset()
		}
		l.workspaces.Delete(user.Id)
		l.presenter.PublishAuth(user.Id, string(events.SignedOut))
		return nil
	}

	return nil
}
