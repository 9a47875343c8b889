package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"carshare/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRideStarted NotificationType = "RIDE_STARTED"
	NotificationRideEnded   NotificationType = "RIDE_ENDED"
)

// Notification represents a notification to be sent to a rider.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// Notifier handles notification delivery.
type Notifier struct {
	// In a real system, this would have:
	// - Push notification client (FCM, APNS)
	// - SMS client (Twilio)
	// - Email client (SendGrid)
}

// NewNotifier creates a new Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// RideStarted notifies the rider that their ride has started.
func (n *Notifier) RideStarted(ctx context.Context, riderID string, rideID domain.RideID) error {
	return n.send(ctx, Notification{
		Type:        NotificationRideStarted,
		RecipientID: riderID,
		Title:       "Ride Started",
		Message:     fmt.Sprintf("Ride %d started. Drive safely!", rideID),
		Data: map[string]interface{}{
			"ride_id": rideID,
		},
		CreatedAt: time.Now(),
	})
}

// RideEnded notifies the rider that their ride has ended, with the fare.
func (n *Notifier) RideEnded(ctx context.Context, receipt *domain.Receipt) error {
	return n.send(ctx, Notification{
		Type:        NotificationRideEnded,
		RecipientID: receipt.RiderID,
		Title:       "Ride Completed",
		Message: fmt.Sprintf("Ride %d ended. Duration: %d minutes, Distance: %.1f km. Total fare: ₹%.2f",
			receipt.RideID, receipt.DurationMinutes, receipt.DistanceKm, receipt.Fare),
		Data: map[string]interface{}{
			"receipt_id": receipt.ID,
			"ride_id":    receipt.RideID,
			"fare":       receipt.Fare,
			"ended_at":   receipt.EndedAt,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification (mock implementation).
func (n *Notifier) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Message)
	return nil
}
