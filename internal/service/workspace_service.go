package service

import (
	"context"
	"time"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/repository/memory"
	"oracle-assistant-be/internal/workspace"
	"oracle-assistant-be/pkg/events"
)

type IWorkspaceService interface {
	// Ensure returns the user's workspace, announcing SIGNED_IN when it has to be built.
	Ensure(ctx context.Context, user entity.AuthUser) (*workspace.State, error)
	View(ctx context.Context, user entity.AuthUser) (*dto.WorkspaceView, error)
	SetDraft(ctx context.Context, user entity.AuthUser, draft string) (*dto.WorkspaceView, error)
	DismissBanner(ctx context.Context, user entity.AuthUser) (*dto.WorkspaceView, error)
}

type workspaceService struct {
	workspaces  *memory.WorkspaceRepository
	authChannel *events.AuthChannel
	presenter   *Presenter
	logger      logger.ILogger
}

func NewWorkspaceService(
	workspaces *memory.WorkspaceRepository,
	authChannel *events.AuthChannel,
	presenter *Presenter,
	log logger.ILogger,
) IWorkspaceService {
	return &workspaceService{
		workspaces:  workspaces,
		authChannel: authChannel,
		presenter:   presenter,
		logger:      log,
	}
}

func (s *workspaceService) Ensure(ctx context.Context, user entity.AuthUser) (*workspace.State, error) {
	state, created := s.workspaces.GetOrCreate(user)
	if !created {
		return state, nil
	}

	// A valid token without a workspace: the process restarted or the cache
	// expired. Only the call that built the workspace re-enters as a fresh
	// sign-in, so concurrent first requests share one session fetch.
	if err := s.authChannel.Publish(events.AuthStateChange{
		Type:   events.SignedIn,
		UserID: user.Id,
		Email:  user.Email,
	}); err != nil {
		s.workspaces.Delete(user.Id)
		return nil, err
	}
	return state, nil
}

func (s *workspaceService) View(ctx context.Context, user entity.AuthUser) (*dto.WorkspaceView, error) {
	state, err := s.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.presenter.View(state), nil
}

func (s *workspaceService) SetDraft(ctx context.Context, user entity.AuthUser, draft string) (*dto.WorkspaceView, error) {
	state, err := s.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}
	state.SetDraft(draft)
	return s.presenter.Publish(user.Id, state), nil
}

func (s *workspaceService) DismissBanner(ctx context.Context, user entity.AuthUser) (*dto.WorkspaceView, error) {
	state, err := s.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}
	state.ClearBanner()
	return s.presenter.Publish(user.Id, state), nil
}

// storeFailure records a store error on the banner and wraps it for the caller.
func storeFailure(log logger.ILogger, state *workspace.State, op string, err error) error {
	log.Error("STORE", "Session store call failed", map[string]interface{}{
		"op":    op,
		"error": err.Error(),
	})
	if state != nil {
		state.SetBanner(MessageStoreUnavailable, true)
	}
	return &PersistenceError{Op: op, Err: err}
}

func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
