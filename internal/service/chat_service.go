package service

import (
	"context"
	"strings"
	"time"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/repository/specification"
	"oracle-assistant-be/internal/repository/unitofwork"
	"oracle-assistant-be/internal/workspace"
	"oracle-assistant-be/pkg/assistant"
	"oracle-assistant-be/pkg/events"

	"github.com/google/uuid"
)

// EventPublisher is the telemetry bus. *nats.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IChatService interface {
	LoadMessages(ctx context.Context, user entity.AuthUser, sessionID uuid.UUID) (*dto.ListMessagesResponse, error)
	SendMessage(ctx context.Context, user entity.AuthUser, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)

	// OwnedSession loads a session and checks it belongs to user.
	OwnedSession(ctx context.Context, state *workspace.State, user entity.AuthUser, sessionID uuid.UUID) (*entity.ChatSession, error)
	// ReloadThread fetches a session's messages oldest first into the workspace.
	ReloadThread(ctx context.Context, state *workspace.State, sessionID uuid.UUID) error
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	workspaces   IWorkspaceService
	assistant    assistant.IAssistant
	presenter    *Presenter
	publisher    EventPublisher
	storeTimeout time.Duration
	logger       logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	workspaces IWorkspaceService,
	oracleAssistant assistant.IAssistant,
	presenter *Presenter,
	publisher EventPublisher,
	storeTimeout time.Duration,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		workspaces:   workspaces,
		assistant:    oracleAssistant,
		presenter:    presenter,
		publisher:    publisher,
		storeTimeout: storeTimeout,
		logger:       log,
	}
}

func (s *chatService) OwnedSession(ctx context.Context, state *workspace.State, user entity.AuthUser, sessionID uuid.UUID) (*entity.ChatSession, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(storeCtx)
	session, err := uow.ChatSessionRepository().FindOne(storeCtx,
		specification.ByID{ID: sessionID},
		specification.UserOwnedBy{UserID: user.Id},
	)
	if err != nil {
		return nil, storeFailure(s.logger, state, "load chat session", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *chatService) fetchThread(ctx context.Context, sessionID uuid.UUID) ([]*entity.Message, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(storeCtx)
	return uow.MessageRepository().FindAll(storeCtx,
		specification.BySessionID{SessionID: sessionID},
		specification.Chronological(),
	)
}

func (s *chatService) ReloadThread(ctx context.Context, state *workspace.State, sessionID uuid.UUID) error {
	messages, err := s.fetchThread(ctx, sessionID)
	if err != nil {
		return storeFailure(s.logger, state, "load messages", err)
	}
	state.ReplaceMessages(sessionID, messages)
	return nil
}

func (s *chatService) LoadMessages(ctx context.Context, user entity.AuthUser, sessionID uuid.UUID) (*dto.ListMessagesResponse, error) {
	state, err := s.workspaces.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}

	if _, err := s.OwnedSession(ctx, state, user, sessionID); err != nil {
		return nil, err
	}

	messages, err := s.fetchThread(ctx, sessionID)
	if err != nil {
		err = storeFailure(s.logger, state, "load messages", err)
		s.presenter.Publish(user.Id, state)
		return nil, err
	}
	if state.ReplaceMessages(sessionID, messages) {
		s.presenter.Publish(user.Id, state)
	}

	return &dto.ListMessagesResponse{
		SessionId: sessionID.String(),
		Messages:  s.presenter.Renderer().Messages(messages),
	}, nil
}

func (s *chatService) SendMessage(ctx context.Context, user entity.AuthUser, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	state, err := s.workspaces.Ensure(ctx, user)
	if err != nil {
		return nil, err
	}

	content := req.Content
	if content == "" {
		content = state.Draft()
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	sessionID := state.ActiveSessionID()
	if sessionID == uuid.Nil {
		return nil, ErrNoActiveSession
	}

	if !state.TryBeginSend() {
		return nil, ErrSendInProgress
	}
	// The busy flag is released exactly once, before the response view is built
	// on success or on the way out after a failure.
	var view *dto.WorkspaceView
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		state.EndSend()
		view = s.presenter.Publish(user.Id, state)
	}
	defer release()
	s.presenter.Publish(user.Id, state)

	// A send in flight is not aborted when the client goes away.
	ctx = context.WithoutCancel(ctx)

	userMessage := &entity.Message{
		SessionId: sessionID,
		Content:   content,
		Role:      entity.MessageRoleUser,
	}
	if err := s.persist(ctx, userMessage); err != nil {
		return nil, storeFailure(s.logger, state, "save your message", err)
	}
	state.AppendMessage(userMessage)
	state.ClearDraft()
	s.presenter.Publish(user.Id, state)

	result := s.assistant.Ask(ctx, content)

	assistantMessage := &entity.Message{
		SessionId: sessionID,
		Content:   result.Text,
		Role:      entity.MessageRoleAssistant,
		Degraded:  result.Degraded,
		Metadata:  replyMetadata(result),
	}
	if err := s.persist(ctx, assistantMessage); err != nil {
		return nil, storeFailure(s.logger, state, "save the assistant reply", err)
	}
	state.AppendMessage(assistantMessage)
	state.ClearBanner()
	release()

	s.logger.Info("CHAT", "Turn completed", map[string]interface{}{
		"user_id":    user.Id.String(),
		"session_id": sessionID.String(),
		"degraded":   result.Degraded,
		"reason":     result.Reason,
	})

	renderer := s.presenter.Renderer()
	return &dto.SendMessageResponse{
		UserMessage:      renderer.Message(userMessage),
		AssistantMessage: renderer.Message(assistantMessage),
		Degraded:         result.Degraded,
		Workspace:        view,
	}, nil
}

func (s *chatService) persist(ctx context.Context, message *entity.Message) error {
	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(storeCtx)
	if err := uow.MessageRepository().Create(storeCtx, message); err != nil {
		return err
	}

	publishAsync(s.publisher, s.logger, events.ChatMessageCreated(
		message.SessionId.String(),
		message.Id.String(),
		string(message.Role),
		message.Degraded,
		message.CreatedAt,
	))
	return nil
}

func replyMetadata(result assistant.Result) map[string]interface{} {
	metadata := map[string]interface{}{"model": result.Model}
	if result.Degraded {
		metadata["fallback_reason"] = result.Reason
	}
	return metadata
}

// publishAsync is best effort: telemetry never delays or fails a user action.
func publishAsync(publisher EventPublisher, log logger.ILogger, event events.Event) {
	if publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := publisher.Publish(ctx, event); err != nil {
			log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}()
}
