package board

import (
	"context"
	"testing"

	"blindclock/internal/notify"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertSinkPermissionFollowsPreference(t *testing.T) {
	sink := NewAlertSink(test.NewTempApp(t), false)

	permission, err := sink.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionDenied, permission)

	sink.SetEnabled(true)
	permission, err = sink.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionGranted, permission)
}

func TestAlertSinkShowAndClose(t *testing.T) {
	sink := NewAlertSink(test.NewTempApp(t), true)
	shown, closed := 0, 0

	handle, err := sink.Show("Main - site, 10", notify.Hooks{
		OnShow:  func() { shown++ },
		OnClose: func() { closed++ },
	})
	require.NoError(t, err)
	assert.Equal(t, 1, shown)

	handle.Close()
	handle.Close()
	assert.Equal(t, 1, closed)
}
