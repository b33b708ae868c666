package service

import (
	"context"
	"time"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/repository/specification"
	"oracle-assistant-be/internal/repository/unitofwork"
	"oracle-assistant-be/internal/workspace"
	"oracle-assistant-be/pkg/events"

	"github.com/google/uuid"
)

type ISessionService interface {
	// Refresh fetches the user's sessions once, newest first, and auto-selects
	// the most recent one when nothing is active.
	Refresh(ctx context.Context, state *workspace.State, user entity.AuthUser) error
	ListSessions(ctx context.Context, user entity.AuthUser) (*dto.ListSessionsResponse, error)
	CreateSession(ctx context.Context, user entity.AuthUser) (*dto.CreateSessionResponse, error)
	SelectSession(ctx context.Context, user entity.AuthUser, sessionID uuid.UUID) (*dto.WorkspaceView, error)
}

type sessionService struct {
	uowFactory   unitofwork.RepositoryFactory
	workspaces   IWorkspaceService
	threads      IChatService
	presenter    *Presenter
	publisher    EventPublisher
	storeTimeout time.Duration
	logger       logger.ILogger
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	workspaces IWorkspaceService,
	threads IChatService,
	presenter *Presenter,
	publisher EventPublisher,
	storeTimeout time.Duration,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory:   uowFactory,
		workspaces:   workspaces,
		threads:      threads,
		presenter:    presenter,
		publisher:    publisher,
		storeTimeout: storeTimeout,
		logger:       log,
	}
}

func (s *sessionService) Refresh(ctx context.Context, state *workspace.State, user entity.AuthUser) error {
	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(storeCtx)
	sessions, err := uow.ChatSessionRepository().FindAll(storeCtx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.NewestFirst(),
	)
	if err != nil {
		return storeFailure(s.logger, state, "list chat sessions", err)
	}

	state.ReplaceSessions(sessions)
	if sessionID, selected := state.SelectFirstIfNone(); selected {
		if err := s.threads.ReloadThread(ctx, state, sessionID); err != nil {
			return err
		}
	}
	state.ClearBanner()

	s.logger.Info("SESSION", "Sessions loaded", map[string]interface{}{
		"user_id": user.Id.String(),
		"count":   len(sessions),
	})
	return nil
}

func (s *sessionService) ListSessions(ctx context.Context, user entity.AuthUser) (*dto.ListSessionsResponse, error) {
	state, err := s.workspaces.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}

	err = s.Refresh(ctx, state, user)
	view := s.presenter.Publish(user.Id, state)
	if err != nil {
		return nil, err
	}
	return &dto.ListSessionsResponse{Sessions: view.Sessions}, nil
}

func (s *sessionService) CreateSession(ctx context.Context, user entity.AuthUser) (*dto.CreateSessionResponse, error) {
	state, err := s.workspaces.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	session := &entity.ChatSession{
		UserId: user.Id,
		Title:  entity.DefaultChatSessionTitle,
	}
	uow := s.uowFactory.NewUnitOfWork(storeCtx)
	if err := uow.ChatSessionRepository().Create(storeCtx, session); err != nil {
		err = storeFailure(s.logger, state, "create chat session", err)
		s.presenter.Publish(user.Id, state)
		return nil, err
	}

	// The stored row, not a local guess, goes into the view.
	state.PrependSession(session)
	state.ClearBanner()
	view := s.presenter.Publish(user.Id, state)

	publishAsync(s.publisher, s.logger, events.ChatSessionCreated(session.Id.String(), user.Id.String(), session.CreatedAt))

	return &dto.CreateSessionResponse{
		Session:   s.presenter.Renderer().Session(session, true),
		Workspace: view,
	}, nil
}

func (s *sessionService) SelectSession(ctx context.Context, user entity.AuthUser, sessionID uuid.UUID) (*dto.WorkspaceView, error) {
	state, err := s.workspaces.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}

	if _, err := s.threads.OwnedSession(ctx, state, user, sessionID); err != nil {
		return nil, err
	}

	state.Activate(sessionID)
	err = s.threads.ReloadThread(ctx, state, sessionID)
	view := s.presenter.Publish(user.Id, state)
	if err != nil {
		return nil, err
	}
	return view, nil
}
