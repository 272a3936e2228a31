package cmdutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireFlag(t *testing.T) {
	assert.NoError(t, RequireFlag("patch", "p.json"))
	assert.Error(t, RequireFlag("patch", ""))
}
