package infrastructure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/gdfetch-go/internal/domain"
)

func TestNotificationService_Disabled(t *testing.T) {
	n := NewNotificationService(&domain.NotificationConfig{Enabled: false, Method: "notify-send"}, nil)
	n.binary = "/nonexistent/notify"

	assert.NoError(t, n.Send("title", "message"))
}

func TestNotificationService_UnknownMethod(t *testing.T) {
	n := NewNotificationService(&domain.NotificationConfig{Enabled: true, Method: "carrier-pigeon"}, nil)

	assert.NoError(t, n.Send("title", "message"))
}

func TestNotificationService_CommandFailure(t *testing.T) {
	n := NewNotificationService(&domain.NotificationConfig{Enabled: true, Method: "notify-send"}, nil)
	n.binary = "/nonexistent/notify"

	assert.Error(t, n.Send("title", "message"))

	// helpers swallow the error
	n.NotifyDownloadFailed("https://example.com/model.pth", errors.New("boom"))
	n.NotifyDownloadCompleted("https://example.com/model.pth", "/tmp/model.pth")
}

func TestNotificationService_Nil(t *testing.T) {
	var n *NotificationService
	assert.NoError(t, n.Send("title", "message"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcde...", truncateString("abcdefghij", 5))
}
