// Package testutil holds helpers shared by container-backed tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// RequireDocker skips the test if testcontainers cannot reach a Docker
// daemon, or when running with -short.
func RequireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("testutil: container tests disabled in -short mode")
	}
	if !dockerHealthy() {
		t.Skip("testutil: docker is not available")
	}
}

func dockerHealthy() (healthy bool) {
	defer func() {
		if recover() != nil {
			healthy = false
		}
	}()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return provider.Health(ctx) == nil
}
