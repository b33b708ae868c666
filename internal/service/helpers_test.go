package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/model"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/repository/memory"
	"oracle-assistant-be/internal/repository/unitofwork"
	"oracle-assistant-be/pkg/assistant"
	"oracle-assistant-be/pkg/events"
	"oracle-assistant-be/pkg/identity"
	"oracle-assistant-be/pkg/llm"
	"oracle-assistant-be/pkg/render"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testPassword = "secret1"

type fakeGateway struct {
	mu       sync.Mutex
	users    map[string]entity.AuthUser
	tokens   map[string]entity.AuthUser
	broken   bool
	signOuts int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{users: map[string]entity.AuthUser{}, tokens: map[string]entity.AuthUser{}}
}

func (g *fakeGateway) addUser(email string) entity.AuthUser {
	g.mu.Lock()
	defer g.mu.Unlock()
	u := entity.AuthUser{Id: uuid.New(), Email: email}
	g.users[email] = u
	return u
}

func (g *fakeGateway) issue(u entity.AuthUser) *entity.AuthSession {
	token := "access-" + uuid.NewString()
	g.tokens[token] = u
	return &entity.AuthSession{AccessToken: token, RefreshToken: "refresh-" + token, ExpiresAt: time.Now().Add(time.Hour), User: u}
}

func (g *fakeGateway) SignUp(ctx context.Context, email, password, redirectTo string) (*identity.SignUpResult, error) {
	u := g.addUser(email)
	return &identity.SignUpResult{User: u, ConfirmationRequired: true}, nil
}

func (g *fakeGateway) SignIn(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.broken {
		return nil, errors.New("dial tcp: connection refused")
	}
	u, ok := g.users[email]
	if !ok || password != testPassword {
		return nil, &identity.Error{Status: http.StatusBadRequest, Message: "Invalid login credentials"}
	}
	return g.issue(u), nil
}

func (g *fakeGateway) SignOut(ctx context.Context, accessToken string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signOuts++
	delete(g.tokens, accessToken)
	return nil
}

func (g *fakeGateway) GetUser(ctx context.Context, accessToken string) (*entity.AuthUser, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	u, ok := g.tokens[accessToken]
	if !ok {
		return nil, &identity.Error{Status: http.StatusUnauthorized, Message: "invalid JWT"}
	}
	return &u, nil
}

func (g *fakeGateway) Refresh(ctx context.Context, refreshToken string) (*entity.AuthSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for token, u := range g.tokens {
		if "refresh-"+token == refreshToken {
			return g.issue(u), nil
		}
	}
	return nil, &identity.Error{Status: http.StatusBadRequest, Message: "Invalid Refresh Token"}
}

// fakeProvider stands in for the generative model.
type fakeProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	release chan struct{} // when set, Generate blocks until it is closed
	entered chan struct{}
}

func (p *fakeProvider) Model() string { return "fake-model" }

func (p *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	release, entered := p.release, p.entered
	p.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return p.reply, p.err
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

type recordingNotifier struct {
	mu         sync.Mutex
	views      int
	authEvents []string
}

func (n *recordingNotifier) PushWorkspace(userID uuid.UUID, view *dto.WorkspaceView) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views++
}

func (n *recordingNotifier) PushAuth(userID uuid.UUID, event string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.authEvents = append(n.authEvents, event)
}

type harness struct {
	db                *gorm.DB
	gateway           *fakeGateway
	provider          *fakeProvider
	notifier          *recordingNotifier
	workspaces        *memory.WorkspaceRepository
	sessionQueryCount *int64

	auth      IAuthService
	sessions  ISessionService
	chat      IChatService
	workspace IWorkspaceService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	var sessionListQueries int64
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:count_session_lists", func(tx *gorm.DB) {
		if tx.Statement.Table == "chat_sessions" {
			atomic.AddInt64(&sessionListQueries, 1)
		}
	}))

	log := logger.NewNopLogger()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	workspaces := memory.NewWorkspaceRepository()
	channel := events.NewAuthChannel()
	t.Cleanup(func() { _ = channel.Close() })

	notifier := &recordingNotifier{}
	presenter := NewPresenter(render.NewRenderer(time.UTC), notifier)
	provider := &fakeProvider{reply: "## Overview\nA tablespace is a logical storage container."}
	oracle := assistant.NewOracleAssistant(provider, 5*time.Second, log)
	gateway := newFakeGateway()

	workspaceService := NewWorkspaceService(workspaces, channel, presenter, log)
	chatService := NewChatService(uowFactory, workspaceService, oracle, presenter, nil, time.Second, log)
	sessionService := NewSessionService(uowFactory, workspaceService, chatService, presenter, nil, time.Second, log)
	authService := NewAuthService(gateway, channel, workspaces, workspaceService, presenter, "http://localhost:5173", log)

	listener := NewAuthStateListener(workspaces, sessionService, presenter, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, listener.Listen(ctx, channel))

	return &harness{
		db:                db,
		gateway:           gateway,
		provider:          provider,
		notifier:          notifier,
		workspaces:        workspaces,
		sessionQueryCount: &sessionListQueries,
		auth:              authService,
		sessions:          sessionService,
		chat:              chatService,
		workspace:         workspaceService,
	}
}

func (h *harness) sessionQueries() int64 {
	return atomic.LoadInt64(h.sessionQueryCount)
}

// seedSession stores a session directly, bypassing the workspace.
func (h *harness) seedSession(t *testing.T, owner uuid.UUID, title string, createdAt time.Time) *model.ChatSession {
	t.Helper()
	s := &model.ChatSession{UserId: owner, Title: title, CreatedAt: createdAt}
	require.NoError(t, h.db.Create(s).Error)
	return s
}

func (h *harness) countMessages(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&model.Message{}).Count(&n).Error)
	return n
}

func (h *harness) signIn(t *testing.T, email string) (*dto.AuthResponse, entity.AuthUser) {
	t.Helper()
	res, err := h.auth.SignIn(context.Background(), &dto.SignInRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return res, entity.AuthUser{Id: res.User.Id, Email: res.User.Email}
}
