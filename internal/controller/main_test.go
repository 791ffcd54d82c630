package controller

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no controller operation leaves a goroutine behind once
// the package's tests finish.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
