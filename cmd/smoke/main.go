// Command smoke drives the sign-in, select, ask flow against a running server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) send(method, path string, body interface{}) (*envelope, int, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return &env, resp.StatusCode, nil
}

func fail(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	email := flag.String("email", os.Getenv("SMOKE_EMAIL"), "account email")
	password := flag.String("password", os.Getenv("SMOKE_PASSWORD"), "account password")
	question := flag.String("question", "What is a tablespace?", "question to ask")
	flag.Parse()

	if *email == "" || *password == "" {
		fail("email and password are required (flags or SMOKE_EMAIL / SMOKE_PASSWORD)")
	}

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 90 * time.Second}}
	color.Cyan("🚀 Oracle assistant smoke test against %s\n", *baseURL)

	color.Yellow("\n1. Sign in as %s", *email)
	env, status, err := c.send(http.MethodPost, "/auth/sign-in", map[string]string{"email": *email, "password": *password})
	if err != nil {
		fail("Failed: %v", err)
	}
	if !env.Success {
		fail("Sign-in rejected (%d): %s", status, env.Message)
	}
	var auth struct {
		Session struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
		Workspace struct {
			ActiveSessionId *string `json:"active_session_id"`
			Sessions        []struct {
				Title string `json:"title"`
			} `json:"sessions"`
		} `json:"workspace"`
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		fail("Unreadable sign-in payload: %v", err)
	}
	c.token = auth.Session.AccessToken
	color.Green("Signed in, %d session(s) loaded", len(auth.Workspace.Sessions))

	if auth.Workspace.ActiveSessionId == nil {
		color.Yellow("\n2. No sessions yet, starting a new chat")
		env, status, err = c.send(http.MethodPost, "/chat/v1/sessions", nil)
		if err != nil || !env.Success {
			fail("Create session failed (%d): %v %s", status, err, messageOf(env))
		}
		color.Green("Created session")
	} else {
		color.Yellow("\n2. Most recent session auto-selected: %s", *auth.Workspace.ActiveSessionId)
	}

	color.Yellow("\n3. Ask: %q", *question)
	started := time.Now()
	env, status, err = c.send(http.MethodPost, "/chat/v1/messages", map[string]string{"content": *question})
	if err != nil || !env.Success {
		fail("Send failed (%d): %v %s", status, err, messageOf(env))
	}
	var sent struct {
		UserMessage      struct{ Content string } `json:"user_message"`
		AssistantMessage struct{ Content string } `json:"assistant_message"`
		Degraded         bool                     `json:"degraded"`
	}
	if err := json.Unmarshal(env.Data, &sent); err != nil {
		fail("Unreadable send payload: %v", err)
	}
	color.Green("Stored user message: %q", sent.UserMessage.Content)
	if sent.Degraded {
		color.Magenta("Assistant replied with the fallback text after %s", time.Since(started).Round(time.Millisecond))
	} else {
		color.Green("Assistant replied after %s", time.Since(started).Round(time.Millisecond))
	}
	fmt.Println(sent.AssistantMessage.Content)

	color.Yellow("\n4. Sign out")
	if env, status, err = c.send(http.MethodPost, "/auth/sign-out", nil); err != nil || !env.Success {
		fail("Sign-out failed (%d): %v %s", status, err, messageOf(env))
	}
	color.Cyan("\n✅ Smoke test passed")
}

func messageOf(env *envelope) string {
	if env == nil {
		return ""
	}
	return env.Message
}
