// Package tests contains test cases for models, repositories and business flows to avoid circular imports
package tests

import (
	"testing"

	testingutil "github.com/kubousky/dotmap/testing"
)

// requirePostgres skips the calling test when no test database server is
// reachable, so the suite stays runnable on machines without Postgres.
func requirePostgres(t *testing.T) {
	t.Helper()
	if !testingutil.PostgresAvailable() {
		t.Skip("PostgreSQL test server is not available")
	}
}
