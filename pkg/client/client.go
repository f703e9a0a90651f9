// Package client implements the browser-side session flow for the
// privileged admin API: the two-step login state machine, token
// holding, and re-verification when a session is resumed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tradeledger/superadmin/internal/models"
)

// State is the client-side session state.
type State int

const (
	StateLoggedOut State = iota
	StateAwaitingSecondFactor
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAwaitingSecondFactor:
		return "awaiting_second_factor"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "logged_out"
	}
}

// Client drives the login flow against the admin API and holds the
// resulting bearer token in memory. It is safe for single-goroutine
// use; it models one operator session, not a connection pool.
type Client struct {
	baseURL string
	httpc   *http.Client

	state     State
	token     string
	expiresAt time.Time

	// Credentials are held only between the first and second login
	// step, then wiped.
	pendingUsername string
	pendingPassword string
}

// New creates a Client for the API at baseURL.
func New(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		httpc:   httpc,
		state:   StateLoggedOut,
	}
}

// State returns the current session state.
func (c *Client) State() State { return c.state }

// Token returns the held bearer token, empty when logged out.
func (c *Client) Token() string { return c.token }

// ExpiresAt returns when the held token lapses.
func (c *Client) ExpiresAt() time.Time { return c.expiresAt }

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totpCode,omitempty"`
}

type loginResponse struct {
	Success     bool       `json:"success"`
	Requires2FA bool       `json:"requires2FA"`
	Token       string     `json:"token"`
	ExpiresIn   int64      `json:"expiresIn"`
	Message     string     `json:"message"`
	LockedUntil *time.Time `json:"lockedUntil"`
}

// Login runs the first step. On a fully provisioned server this
// usually returns models.ErrSecondFactorRequired and the flow
// continues with CompleteLogin; without a second factor it
// authenticates outright.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.postLogin(ctx, loginRequest{Username: username, Password: password})
	if err != nil {
		c.reset()
		return err
	}

	if resp.Requires2FA {
		c.state = StateAwaitingSecondFactor
		c.token = resp.Token
		c.expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		c.pendingUsername = username
		c.pendingPassword = password
		return models.ErrSecondFactorRequired
	}

	c.adopt(resp)
	return nil
}

// CompleteLogin runs the second step, resubmitting the held
// credentials with the TOTP code.
func (c *Client) CompleteLogin(ctx context.Context, totpCode string) error {
	if c.state != StateAwaitingSecondFactor {
		return fmt.Errorf("no login awaiting a second factor")
	}

	resp, err := c.postLogin(ctx, loginRequest{
		Username: c.pendingUsername,
		Password: c.pendingPassword,
		TOTPCode: totpCode,
	})
	if err != nil {
		// Credentials stay held: the operator may retry with a fresh
		// code unless the server locked the address out.
		return err
	}

	c.adopt(resp)
	return nil
}

// Resume adopts a previously issued token after re-verifying it with
// the server. Used on page reload; an expired or tampered token drops
// the client back to logged out.
func (c *Client) Resume(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	var body struct {
		Valid bool `json:"valid"`
		User  *struct {
			ExpiresAt time.Time `json:"expiresAt"`
		} `json:"user"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&body); err != nil {
		return fmt.Errorf("malformed verify response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK || !body.Valid {
		c.reset()
		return models.ErrInvalidToken
	}

	c.state = StateAuthenticated
	c.token = token
	if body.User != nil {
		c.expiresAt = body.User.ExpiresAt
	}
	return nil
}

// Logout tells the server, then discards the token regardless of the
// outcome: the local wipe is what ends the session.
func (c *Client) Logout(ctx context.Context) error {
	defer c.reset()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	httpResp.Body.Close()
	return nil
}

func (c *Client) postLogin(ctx context.Context, body loginRequest) (*loginResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp loginResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("malformed login response: %w", err)
	}

	switch httpResp.StatusCode {
	case http.StatusOK:
		return &resp, nil
	case http.StatusTooManyRequests:
		return nil, models.ErrRateLimited
	case http.StatusUnauthorized:
		return nil, models.ErrInvalidCredentials
	default:
		return nil, fmt.Errorf("login failed with status %d", httpResp.StatusCode)
	}
}

func (c *Client) adopt(resp *loginResponse) {
	c.state = StateAuthenticated
	c.token = resp.Token
	c.expiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	c.pendingUsername = ""
	c.pendingPassword = ""
}

func (c *Client) reset() {
	c.state = StateLoggedOut
	c.token = ""
	c.expiresAt = time.Time{}
	c.pendingUsername = ""
	c.pendingPassword = ""
}
