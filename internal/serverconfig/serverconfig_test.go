package serverconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/houzhh15/recetas/internal/kvstore"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want error
	}{
		{"https", "https://api.example.com", nil},
		{"http with port", "http://192.168.0.10:3000", nil},
		{"empty", "", ErrEmptyURL},
		{"no scheme", "api.example.com", ErrInvalidURL},
		{"scheme only", "https://", ErrInvalidURL},
		{"ftp", "ftp://files.example.com", ErrInvalidURL},
		{"uppercase scheme", "HTTPS://api.example.com", ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(tt.url), tt.want)
			if tt.want == nil {
				assert.NoError(t, Validate(tt.url))
			}
		})
	}
}

func TestStore_AbsentIsNotError(t *testing.T) {
	s := New(kvstore.NewMemoryStore())

	url, ok, err := s.GetServerURL()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, url)

	configured, err := s.IsConfigured()
	require.NoError(t, err)
	assert.False(t, configured)
}

func TestStore_SetOverwritesWithoutValidation(t *testing.T) {
	s := New(kvstore.NewMemoryStore())

	require.NoError(t, s.SetServerURL("https://one.example.com"))
	require.NoError(t, s.SetServerURL("not-a-url"))

	url, ok, err := s.GetServerURL()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "not-a-url", url)
}

func TestStore_SaveValidates(t *testing.T) {
	s := New(kvstore.NewMemoryStore())

	assert.ErrorIs(t, s.Save("localhost:3000"), ErrInvalidURL)
	_, ok, _ := s.GetServerURL()
	assert.False(t, ok, "invalid URL must not be persisted")

	require.NoError(t, s.Save("http://localhost:3000"))
	url, ok, _ := s.GetServerURL()
	assert.True(t, ok)
	assert.Equal(t, "http://localhost:3000", url)
}

func TestStore_DurableAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, New(kvstore.NewFileStore(path)).SetServerURL("https://api.example.com"))

	url, ok, err := New(kvstore.NewFileStore(path)).GetServerURL()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://api.example.com", url)
}

func TestStatic(t *testing.T) {
	url, ok, err := Static("https://forced.example.com").GetServerURL()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://forced.example.com", url)

	_, ok, _ = Static("").GetServerURL()
	assert.False(t, ok)
}
