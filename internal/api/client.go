package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"budgetbook/internal/budget"
	"budgetbook/internal/session"
)

// Client talks to the budget tracker REST API. It keeps no local cache;
// every call reflects server state at call time.
type Client struct {
	baseURL string
	client  *http.Client
	session session.Store
}

func New(baseURL string, timeout time.Duration, sess session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		session: sess,
	}
}

// ListResult is a single page of the server-owned collection plus the total
// item count across all pages.
type ListResult struct {
	Transactions []budget.Transaction `json:"transactions"`
	Total        int                  `json:"total"`
}

// List fetches one page of transactions matching the query.
func (c *Client) List(ctx context.Context, q ListQuery) (ListResult, error) {
	var out ListResult
	if err := c.do(ctx, http.MethodGet, "/transactions", q.Values(), nil, &out); err != nil {
		return ListResult{}, err
	}

	return out, nil
}

// Summary fetches the unfiltered aggregate totals for the current user.
func (c *Client) Summary(ctx context.Context) (budget.Summary, error) {
	var out budget.Summary
	if err := c.do(ctx, http.MethodGet, "/transactions/summary", nil, nil, &out); err != nil {
		return budget.Summary{}, err
	}

	return out, nil
}

// Create records a new transaction and returns it with its server-assigned ID.
func (c *Client) Create(ctx context.Context, draft budget.Draft) (budget.Transaction, error) {
	var out budget.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, draft, &out); err != nil {
		return budget.Transaction{}, err
	}

	return out, nil
}

// Update replaces the editable fields of the transaction with the given ID.
func (c *Client) Update(ctx context.Context, id int64, draft budget.Draft) (budget.Transaction, error) {
	var out budget.Transaction
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d", id), nil, draft, &out); err != nil {
		return budget.Transaction{}, err
	}

	return out, nil
}

// Delete removes the transaction with the given ID.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, nil, nil)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for a bearer token and saves it in the session
// store.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out loginResponse

	err := c.do(ctx, http.MethodPost, "/login", nil, loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return err
	}

	return c.session.SetToken(out.AccessToken)
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. The user still logs in afterwards.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	return c.do(ctx, http.MethodPost, "/register", nil, registerRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, nil)
}

// Logout clears the stored session credential.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// HasSession reports whether a credential is currently stored. Whether it is
// still valid is only known to the server.
func (c *Client) HasSession() bool {
	return c.session.Token() != ""
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}

		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
