package service

import (
	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/workspace"
	"oracle-assistant-be/pkg/render"

	"github.com/google/uuid"
)

// IRealtimeNotifier pushes state to the user's open browser tabs.
type IRealtimeNotifier interface {
	PushWorkspace(userID uuid.UUID, view *dto.WorkspaceView)
	PushAuth(userID uuid.UUID, event string)
}

type noopNotifier struct{}

func NewNoopNotifier() IRealtimeNotifier {
	return noopNotifier{}
}

func (noopNotifier) PushWorkspace(uuid.UUID, *dto.WorkspaceView) {}
func (noopNotifier) PushAuth(uuid.UUID, string)                  {}

// Presenter renders workspace state and fans it out to the realtime channel.
type Presenter struct {
	renderer *render.Renderer
	notifier IRealtimeNotifier
}

func NewPresenter(renderer *render.Renderer, notifier IRealtimeNotifier) *Presenter {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	return &Presenter{renderer: renderer, notifier: notifier}
}

func (p *Presenter) View(state *workspace.State) *dto.WorkspaceView {
	snap := state.Snapshot()

	view := &dto.WorkspaceView{
		Authenticated:    snap.User != nil,
		Sessions:         make([]render.SessionView, 0, len(snap.Sessions)),
		HasActiveSession: snap.HasActiveSession(),
		Messages:         p.renderer.Messages(snap.Messages),
		Busy:             snap.Busy,
		Draft:            snap.Draft,
	}
	if snap.User != nil {
		view.User = &dto.UserView{Id: snap.User.Id, Email: snap.User.Email}
	}
	for _, s := range snap.Sessions {
		view.Sessions = append(view.Sessions, p.renderer.Session(s, s.Id == snap.ActiveSessionID))
	}
	if snap.HasActiveSession() {
		id := snap.ActiveSessionID.String()
		view.ActiveSessionId = &id
	}
	if snap.Banner != nil {
		view.Banner = &dto.BannerView{Message: snap.Banner.Message, Retryable: snap.Banner.Retryable}
	}
	return view
}

// Publish renders the state, pushes it and returns the rendered view.
func (p *Presenter) Publish(userID uuid.UUID, state *workspace.State) *dto.WorkspaceView {
	view := p.View(state)
	p.notifier.PushWorkspace(userID, view)
	return view
}

func (p *Presenter) PublishAuth(userID uuid.UUID, event string) {
	p.notifier.PushAuth(userID, event)
}

func (p *Presenter) Renderer() *render.Renderer {
	return p.renderer
}
