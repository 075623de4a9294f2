package stubserver_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/stubserver"
)

type client struct {
	t     *testing.T
	url   string
	token string
}

func newClient(t *testing.T) *client {
	t.Helper()

	srv := httptest.NewServer(stubserver.New("test-secret").Handler())
	t.Cleanup(srv.Close)

	return &client{t: t, url: srv.URL}
}

func (c *client) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, c.url+path, &buf)
	require.NoError(c.t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)

	return resp, decoded
}

func (c *client) registerAndLogin(username string) {
	c.t.Helper()

	resp, _ := c.do(http.MethodPost, "/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter22",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	resp, body := c.do(http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": "hunter22",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	token, _ := body["access_token"].(string)
	require.NotEmpty(c.t, token)
	c.token = token
}

func (c *client) create(name string, txType string, amount float64, date string) int64 {
	c.t.Helper()

	resp, body := c.do(http.MethodPost, "/transactions", map[string]any{
		"name":             name,
		"category":         "food",
		"type":             txType,
		"amount":           amount,
		"transaction_date": date,
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	id, ok := body["id"].(float64)
	require.True(c.t, ok)

	return int64(id)
}

func TestRegister_Duplicates(t *testing.T) {
	c := newClient(t)

	resp, _ := c.do(http.MethodPost, "/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := c.do(http.MethodPost, "/register", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username already taken", body["detail"])

	resp, body = c.do(http.MethodPost, "/register", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already taken", body["detail"])
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newClient(t)
	c.registerAndLogin("alice")

	resp, body := c.do(http.MethodPost, "/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", body["detail"])

	resp, body = c.do(http.MethodPost, "/login", map[string]string{
		"username": "nobody", "password": "pw",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", body["detail"])
}

func TestTransactions_RequireAuth(t *testing.T) {
	c := newClient(t)

	resp, body := c.do(http.MethodGet, "/transactions", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authenticated", body["detail"])

	c.token = "garbage"
	resp, body = c.do(http.MethodGet, "/transactions", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid token", body["detail"])
}

func TestCreate_ValidationErrorShape(t *testing.T) {
	c := newClient(t)
	c.registerAndLogin("alice")

	resp, body := c.do(http.MethodPost, "/transactions", map[string]any{
		"name":             "Coffee",
		"category":         "food",
		"type":             "expense",
		"amount":           -5,
		"transaction_date": "2024-03-01",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Validation errors come back as a list of {"msg": ...} items.
	detail, ok := body["detail"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, detail)

	first, ok := detail[0].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, first["msg"])
}

func TestList_FiltersAndPagination(t *testing.T) {
	c := newClient(t)
	c.registerAndLogin("alice")

	for i := 0; i < 20; i++ {
		c.create(fmt.Sprintf("Expense %d", i), "expense", 10, "2024-03-01")
	}
	c.create("Paycheck", "income", 2500, "2024-04-01")

	// skip/limit carve a page out of the filtered set; total covers all matches.
	resp, body := c.do(http.MethodGet, "/transactions?type=expense&skip=15&limit=15", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(20), body["total"])
	assert.Len(t, body["transactions"], 5)

	resp, body = c.do(http.MethodGet, "/transactions?type=income&skip=0&limit=15", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	resp, body = c.do(http.MethodGet, "/transactions?start_date=2024-03-15&skip=0&limit=15", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	resp, body = c.do(http.MethodGet, "/transactions?end_date=2024-03-15&skip=0&limit=15", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(20), body["total"])
}

func TestSummary(t *testing.T) {
	c := newClient(t)
	c.registerAndLogin("alice")

	c.create("Paycheck", "income", 2500, "2024-03-01")
	c.create("Rent", "expense", 850, "2024-03-02")
	c.create("Groceries", "expense", 150.50, "2024-03-03")

	resp, body := c.do(http.MethodGet, "/transactions/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(2500), body["total_income"])
	assert.Equal(t, 1000.50, body["total_expense"])
	assert.Equal(t, 1499.50, body["net_balance"])
}

func TestUpdateAndDelete(t *testing.T) {
	c := newClient(t)
	c.registerAndLogin("alice")

	id := c.create("Coffee", "expense", 3.20, "2024-03-01")

	resp, body := c.do(http.MethodPut, fmt.Sprintf("/transactions/%d", id), map[string]any{
		"name":             "Espresso",
		"category":         "food",
		"type":             "expense",
		"amount":           2.10,
		"transaction_date": "2024-03-01",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Espresso", body["name"])
	assert.Equal(t, 2.10, body["amount"])

	resp, body = c.do(http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Transaction deleted", body["message"])

	resp, body = c.do(http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Transaction not found", body["detail"])
}

func TestTransactions_IsolatedPerUser(t *testing.T) {
	alice := newClient(t)
	alice.registerAndLogin("alice")
	id := alice.create("Coffee", "expense", 3.20, "2024-03-01")

	bob := &client{t: t, url: alice.url}
	bob.registerAndLogin("bob")

	resp, body := bob.do(http.MethodGet, "/transactions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total"])

	resp, body = bob.do(http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not authorized", body["detail"])
}
