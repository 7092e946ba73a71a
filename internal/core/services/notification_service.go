package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"stockwise-decd/internal/adapters/persistence/models"
)

// NotificationService posts plain-text alerts to a configured webhook
type NotificationService struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// NewNotificationService creates a new notification service.
// Without NOTIFY_WEBHOOK_URL set, notifications are silently disabled.
func NewNotificationService() *NotificationService {
	url := os.Getenv("NOTIFY_WEBHOOK_URL")
	return &NotificationService{
		webhookURL: url,
		enabled:    url != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// send posts a text message to the webhook
func (s *NotificationService) send(message string) error {
	if !s.enabled {
		return nil
	}

	payload, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyLowStock sends a summary of critical and low-stock products
func (s *NotificationService) NotifyLowStock(critical, low []*models.Product) {
	if !s.enabled || (len(critical) == 0 && len(low) == 0) {
		return
	}

	var b strings.Builder
	b.WriteString("📉 Alerta de inventario\n")
	if len(critical) > 0 {
		b.WriteString("\nAgotados:\n")
		for _, p := range critical {
			fmt.Fprintf(&b, "  - %s (%s)\n", p.Name, p.SKU)
		}
	}
	if len(low) > 0 {
		b.WriteString("\nStock bajo:\n")
		for _, p := range low {
			fmt.Fprintf(&b, "  - %s (%s): %d unidades, punto de reorden %d\n",
				p.Name, p.SKU, p.Quantity, p.ReorderPoint)
		}
	}

	if err := s.send(b.String()); err != nil {
		log.Printf("⚠️ Failed to send low stock alert: %v", err)
	}
}
