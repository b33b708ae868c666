package dto

import (
	"oracle-assistant-be/pkg/render"
)

// SendMessageRequest with empty content sends the stored draft instead.
type SendMessageRequest struct {
	Content string `json:"content"`
}

type SendMessageResponse struct {
	UserMessage      render.MessageView `json:"user_message"`
	AssistantMessage render.MessageView `json:"assistant_message"`
	Degraded         bool               `json:"degraded"`
	Workspace        *WorkspaceView     `json:"workspace"`
}

type CreateSessionResponse struct {
	Session   render.SessionView `json:"session"`
	Workspace *WorkspaceView     `json:"workspace"`
}

type ListSessionsResponse struct {
	Sessions []render.SessionView `json:"sessions"`
}

type ListMessagesResponse struct {
	SessionId string               `json:"session_id"`
	Messages  []render.MessageView `json:"messages"`
}
