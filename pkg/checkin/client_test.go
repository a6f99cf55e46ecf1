package checkin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, enabled bool) *Client {
	return NewClient(Options{Enabled: enabled, URL: url, HWID: "hw", AppKey: "key"}, logrus.New())
}

func TestClient_Create_Disabled(t *testing.T) {
	c := newTestClient("http://unused", false)
	_, err := c.Create(context.Background(), map[string]interface{}{})
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, KindDisabled, cerr.Kind)
}

func TestClient_Create_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "hw", r.Header.Get("X-HW-ID"))
		require.Equal(t, "key", r.Header.Get("X-HW-APPKEY"))
		_, _ = w.Write([]byte(`{"success": true, "id": "42"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	data, err := c.Create(context.Background(), map[string]interface{}{"dn_number": "DN1"})
	require.NoError(t, err)
	require.Equal(t, "42", data["id"])
}

func TestClient_Create_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	_, err := c.Create(context.Background(), nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, KindMalformed, cerr.Kind)
}

func TestClient_Create_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	_, err := c.Create(context.Background(), nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, KindRejected, cerr.Kind)
}

func TestClient_Create_ReportedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, true)
	_, err := c.Create(context.Background(), nil)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, KindRejected, cerr.Kind)
}
