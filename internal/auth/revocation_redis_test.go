//go:build integration

package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisRevocationList(t *testing.T) {
	t.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	list := NewRedisRevocationList(client)
	t.Cleanup(func() { _ = list.Close() })

	require.NoError(t, list.Revoke(ctx, "token-1", time.Now().Add(time.Minute)))

	revoked, err := list.IsRevoked(ctx, "token-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "token-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	ttl, err := client.TTL(ctx, revokedKeyPrefix+"token-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// Already expired tokens are not stored.
	require.NoError(t, list.Revoke(ctx, "token-3", time.Now().Add(-time.Minute)))
	revoked, err = list.IsRevoked(ctx, "token-3")
	require.NoError(t, err)
	assert.False(t, revoked)

	m := NewSessionManager("secret", time.Hour, list)
	token, _, err := m.Issue("user-1")
	require.NoError(t, err)
	require.NoError(t, m.Revoke(ctx, token))
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}
