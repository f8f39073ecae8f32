package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/yourusername/gdfetch-go/internal/domain"
	"go.uber.org/zap"
)

// NotificationService handles sending notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	binary string // overrides the method's executable, used in tests
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if n == nil {
		return nil
	}
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	switch n.config.Method {
	case "osascript":
		return n.sendOSAScript(title, message)
	case "notify-send":
		return n.sendNotifySend(title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}
}

func (n *NotificationService) command(name string) string {
	if n.binary != "" {
		return n.binary
	}
	return name
}

// sendOSAScript sends notification using macOS osascript
func (n *NotificationService) sendOSAScript(title, message string) error {
	quote := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, quote.Replace(message), quote.Replace(title))
	cmd := exec.Command(n.command("osascript"), "-e", script)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "osascript"),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))

	return nil
}

// sendNotifySend sends notification using Linux notify-send
func (n *NotificationService) sendNotifySend(title, message string) error {
	cmd := exec.Command(n.command("notify-send"), title, message)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "notify-send"),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))

	return nil
}

// NotifyDownloadCompleted sends notification when a file has been fetched
func (n *NotificationService) NotifyDownloadCompleted(source, path string) {
	title := "Download Completed"
	message := fmt.Sprintf("Saved %s to %s", truncateString(source, 30), path)
	n.Send(title, message)
}

// NotifyDownloadFailed sends notification when a fetch fails
func (n *NotificationService) NotifyDownloadFailed(source string, err error) {
	title := "Download Failed"
	message := fmt.Sprintf("Failed: %s (%v)", truncateString(source, 30), err)
	n.Send(title, message)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

