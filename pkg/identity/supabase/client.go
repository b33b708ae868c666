// Package supabase is a narrow client for the GoTrue auth API of a Supabase project.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"oracle-assistant-be/internal/entity"
	"oracle-assistant-be/pkg/identity"

	"github.com/google/uuid"
)

type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

var _ identity.Gateway = (*Client)(nil)

func NewClient(projectURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(projectURL, "/") + "/auth/v1",
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *userResponse `json:"user"`
}

// signUpResponse is a session when autoconfirm is on, a bare user otherwise.
type signUpResponse struct {
	sessionResponse
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorCode        string `json:"error_code"`
}

func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) (*identity.SignUpResult, error) {
	endpoint := "/signup"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	var resp signUpResponse
	if err := c.do(ctx, http.MethodPost, endpoint, "", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		session, err := toSession(&resp.sessionResponse)
		if err != nil {
			return nil, err
		}
		return &identity.SignUpResult{User: session.User, Session: session}, nil
	}

	user, err := toUser(&userResponse{ID: resp.ID, Email: resp.Email})
	if err != nil {
		return nil, err
	}
	return &identity.SignUpResult{User: *user, ConfirmationRequired: true}, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*entity.AuthSession, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return toSession(&resp)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*entity.AuthSession, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", body, &resp); err != nil {
		return nil, err
	}
	return toSession(&resp)
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*entity.AuthUser, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return toUser(&resp)
}

func (c *Client) do(ctx context.Context, method, endpoint, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gotrue request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return toError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// toError keeps GoTrue's own wording; the user sees it unchanged.
func toError(status int, raw []byte) error {
	var body errorResponse
	_ = json.Unmarshal(raw, &body)

	message := body.Msg
	for _, candidate := range []string{body.ErrorDescription, body.Message, body.Error} {
		if message != "" {
			break
		}
		message = candidate
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return &identity.Error{Status: status, Code: body.ErrorCode, Message: message}
}

func toUser(u *userResponse) (*entity.AuthUser, error) {
	if u == nil {
		return nil, fmt.Errorf("gotrue response has no user")
	}
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return nil, fmt.Errorf("gotrue user id %q: %w", u.ID, err)
	}
	return &entity.AuthUser{Id: id, Email: u.Email}, nil
}

func toSession(s *sessionResponse) (*entity.AuthSession, error) {
	if s.AccessToken == "" {
		return nil, fmt.Errorf("gotrue response has no access token")
	}
	user, err := toUser(s.User)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	if s.ExpiresAt > 0 {
		expiresAt = time.Unix(s.ExpiresAt, 0)
	}

	return &entity.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         *user,
	}, nil
}
