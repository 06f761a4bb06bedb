//go:build tools

package tools

// Tool dependencies are tracked here with blank imports so go.mod pins
// their versions. Run: go run github.com/vektra/mockery/v2 (from the
// module root) to regenerate mocks from .mockery.yaml.
import (
	_ "github.com/vektra/mockery/v2"
)
