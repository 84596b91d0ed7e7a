package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain runs before all tests in the config package
// It ensures GO_ENV is set to "test" to prevent accidental data loss
func TestMain(m *testing.M) {
	env := os.Getenv("GO_ENV")
	if env != "test" {
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: tests must run with GO_ENV=test to prevent data loss (current GO_ENV=%q)\n", env)
		os.Exit(1)
	}

	// Run tests
	os.Exit(m.Run())
}
