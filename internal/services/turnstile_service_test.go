package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnstilePassesWithoutSecret(t *testing.T) {
	s := NewTurnstileService("")

	ok, err := s.Verify(context.Background(), "", "10.5.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTurnstileRejectsEmptyToken(t *testing.T) {
	s := NewTurnstileService("secret")

	ok, err := s.Verify(context.Background(), "", "10.5.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTurnstileVerifiesAgainstAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("response") == "good-token" {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	s := NewTurnstileService("secret")
	s.verifyURL = srv.URL

	ok, err := s.Verify(context.Background(), "good-token", "10.5.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(context.Background(), "bad-token", "10.5.0.2")
	require.NoError(t, err)
	assert.False(t, ok)
}
