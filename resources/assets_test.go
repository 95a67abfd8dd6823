package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconsAreEmbedded(t *testing.T) {
	for _, name := range []string{AppIcon, TrayIdleIcon, TrayRunningIcon} {
		resource, err := Icon(name)
		require.NoError(t, err, name)
		assert.Contains(t, string(resource.Content()), "<svg")
		assert.Same(t, resource, MustIcon(name))
	}
}

func TestMissingIcon(t *testing.T) {
	_, err := Icon("missing.svg")
	assert.Error(t, err)
	assert.Panics(t, func() { MustIcon("missing.svg") })
}
