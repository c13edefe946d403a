package iploc

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/nearby?ip=200.45.1.10", nil)
	r.Header.Set("x-forwarded-for", "190.1.1.1")
	require.Equal(t, "200.45.1.10", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/nearby", nil)
	r.Header.Set("x-forwarded-for", "190.1.1.1, 10.0.0.1")
	require.Equal(t, "190.1.1.1", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/nearby?ip=nope", nil)
	r.Header.Set("x-real-ip", "181.2.3.4")
	require.Equal(t, "181.2.3.4", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/nearby", nil)
	r.Header.Set("forwarded", `for="[2001:db8::1]";proto=https`)
	require.Equal(t, "2001:db8::1", ClientIP(r))

	r = httptest.NewRequest("GET", "/api/nearby", nil)
	r.RemoteAddr = "186.22.3.4:51234"
	require.Equal(t, "186.22.3.4", ClientIP(r))
}

func TestNilLocator(t *testing.T) {
	l, err := Open("")
	require.NoError(t, err)
	require.Nil(t, l)
	_, ok := l.Lookup("8.8.8.8")
	require.False(t, ok)
	require.NoError(t, l.Close())
	require.Equal(t, "", l.DatabaseType())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	require.Error(t, err)
}
