package dto

import (
	"oracle-assistant-be/pkg/render"
)

type BannerView struct {
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// WorkspaceView is everything the browser needs to paint the chat screen.
type WorkspaceView struct {
	Authenticated    bool                 `json:"authenticated"`
	User             *UserView            `json:"user"`
	Sessions         []render.SessionView `json:"sessions"`
	ActiveSessionId  *string              `json:"active_session_id"`
	HasActiveSession bool                 `json:"has_active_session"`
	Messages         []render.MessageView `json:"messages"`
	Busy             bool                 `json:"busy"`
	Draft            string               `json:"draft"`
	Banner           *BannerView          `json:"banner"`
}

type UpdateDraftRequest struct {
	Draft string `json:"draft" validate:"max=20000"`
}
