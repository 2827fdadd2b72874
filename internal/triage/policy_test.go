package triage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPolicy_MissingFile(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Empty(t, policy.Labels)
	assert.Equal(t, defaultSLAHours, policy.SLAHours)

	policy, err = LoadPolicy(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Empty(t, policy.Labels)
}

func TestLoadPolicy_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yml")
	content := `
labels:
  internal/server: [area/server]
owners:
  internal/: [octocat]
sla_hours: 48
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"area/server"}, policy.Labels["internal/server"])
	assert.Equal(t, []string{"octocat"}, policy.Owners["internal/"])
	assert.Equal(t, 48, policy.SLAHours)
	assert.NotNil(t, policy.ProtectedPaths)
}

func TestLoadPolicy_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yml")
	require.NoError(t, os.WriteFile(path, []byte("labels: [not: a: map"), 0o600))

	_, err := LoadPolicy(path)
	assert.Error(t, err)
}
