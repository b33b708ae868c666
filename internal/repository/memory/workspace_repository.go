package memory

import (
	"sync"
	"time"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/internal/workspace"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// WorkspaceRepository keeps one workspace.State per signed-in user.
type WorkspaceRepository struct {
	cache *cache.Cache
	mu    sync.Mutex // serialises GetOrCreate
}

func NewWorkspaceRepository() *WorkspaceRepository {
	// Idle workspaces expire after an hour; the janitor runs every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &WorkspaceRepository{
		cache: c,
	}
}

// GetOrCreate returns the user's workspace and whether it was created by this call.
// Every hit slides the expiry.
func (r *WorkspaceRepository) GetOrCreate(user entity.AuthUser) (*workspace.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := user.Id.String()
	if x, found := r.cache.Get(key); found {
		state := x.(*workspace.State)
		r.cache.Set(key, state, cache.DefaultExpiration)
		return state, false
	}

	u := user
	state := workspace.NewState(&u)
	r.cache.Set(key, state, cache.DefaultExpiration)
	return state, true
}

func (r *WorkspaceRepository) Get(userID uuid.UUID) (*workspace.State, bool) {
	if x, found := r.cache.Get(userID.String()); found {
		return x.(*workspace.State), true
	}
	return nil, false
}

func (r *WorkspaceRepository) Delete(userID uuid.UUID) {
	r.cache.Delete(userID.String())
}
