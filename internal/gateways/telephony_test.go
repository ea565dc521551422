package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{
		BaseURL:    srv.URL + "/api",
		User:       "apiuser",
		Pass:       "apipass",
		Source:     "console",
		Timeout:    2 * time.Second,
		RetryDelay: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	return client, srv
}

func TestClient_SetCampaignActive(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte("SUCCESS: update_campaign CAMPAIGN ACTIVATED"))
	})

	err := client.SetCampaignActive(context.Background(), "VENTAS01", "Y")
	require.NoError(t, err)

	assert.Equal(t, "update_campaign", gotQuery["function"])
	assert.Equal(t, "VENTAS01", gotQuery["campaign_id"])
	assert.Equal(t, "Y", gotQuery["active"])
	assert.Equal(t, "apiuser", gotQuery["user"])
	assert.Equal(t, "apipass", gotQuery["pass"])
	assert.Equal(t, "console", gotQuery["source"])
}

func TestClient_ErrorBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Legacy API convention: HTTP 200 with an error sentinel in the body.
		w.Write([]byte("ERROR: update_list LIST DOES NOT EXIST"))
	})

	err := client.SetListActive(context.Background(), "9999", "N")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPIFailure)
}

func TestClient_RetriesThenFails(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{
		BaseURL:    srv.URL,
		Timeout:    time.Second,
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	err = client.SetCampaignActive(context.Background(), "X", "Y")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)

	_, err = NewClient(&Config{})
	assert.Error(t, err)
}
