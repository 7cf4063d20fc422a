package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"tripmatch/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRequestCreated   NotificationType = "REQUEST_CREATED"
	NotificationRequestAccepted  NotificationType = "REQUEST_ACCEPTED"
	NotificationRequestRejected  NotificationType = "REQUEST_REJECTED"
	NotificationRequestCancelled NotificationType = "REQUEST_CANCELLED"
	NotificationSeatCancelled    NotificationType = "SEAT_CANCELLED"
	NotificationDecisionReversed NotificationType = "DECISION_REVERSED"
	NotificationRequestExpired   NotificationType = "REQUEST_EXPIRED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	ActorID     string
	ActorRole   domain.Role
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// Sender delivers notifications. Delivery is best-effort: a failed send
// must never abort the state transition that triggered it.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender is the default Sender; it writes notifications to the log.
// Real deployments plug in push/SMS/webhook transports behind the same
// interface.
type LogSender struct{}

// Send logs the notification.
func (LogSender) Send(ctx context.Context, n Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		n.Type, n.RecipientID, n.Title, n.Message)
	return nil
}

// NotificationService builds and dispatches confirmation notifications.
type NotificationService struct {
	sender Sender
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sender Sender) *NotificationService {
	if sender == nil {
		sender = LogSender{}
	}
	return &NotificationService{sender: sender}
}

// NotifyRequestCreated notifies the owner about a new join request.
func (s *NotificationService) NotifyRequestCreated(ctx context.Context, c *domain.Confirmation) error {
	return s.send(ctx, Notification{
		Type:        NotificationRequestCreated,
		RecipientID: c.OwnerID,
		ActorID:     c.PassengerID,
		ActorRole:   domain.RolePassenger,
		Title:       "New Join Request",
		Message:     fmt.Sprintf("A passenger asked to join your %s", targetNoun(c)),
		Data:        confirmationData(c),
	})
}

// NotifyRequestAccepted notifies the passenger that the owner accepted.
func (s *NotificationService) NotifyRequestAccepted(ctx context.Context, c *domain.Confirmation) error {
	return s.send(ctx, Notification{
		Type:        NotificationRequestAccepted,
		RecipientID: c.PassengerID,
		ActorID:     c.OwnerID,
		ActorRole:   domain.RoleOwner,
		Title:       "Request Accepted",
		Message:     fmt.Sprintf("Your request to join the %s was accepted", targetNoun(c)),
		Data:        confirmationData(c),
	})
}

// NotifyRequestRejected notifies the passenger that the owner rejected.
func (s *NotificationService) NotifyRequestRejected(ctx context.Context, c *domain.Confirmation) error {
	return s.send(ctx, Notification{
		Type:        NotificationRequestRejected,
		RecipientID: c.PassengerID,
		ActorID:     c.OwnerID,
		ActorRole:   domain.RoleOwner,
		Title:       "Request Declined",
		Message:     fmt.Sprintf("Your request to join the %s was declined", targetNoun(c)),
		Data:        confirmationData(c),
	})
}

// NotifyRequestCancelled notifies the owner that the passenger withdrew
// a pending request.
func (s *NotificationService) NotifyRequestCancelled(ctx context.Context, c *domain.Confirmation) error {
	return s.send(ctx, Notification{
		Type:        NotificationRequestCancelled,
		RecipientID: c.OwnerID,
		ActorID:     c.PassengerID,
		ActorRole:   domain.RolePassenger,
		Title:       "Request Withdrawn",
		Message:     fmt.Sprintf("A passenger withdrew their request to join your %s", targetNoun(c)),
		Data:        confirmationData(c),
	})
}

// NotifySeatCancelled notifies the other party that an accepted seat was
// cancelled.
func (s *NotificationService) NotifySeatCancelled(ctx context.Context, c *domain.Confirmation, actorID string) error {
	role := c.RoleOf(actorID)
	var message string
	if role == domain.RoleOwner {
		message = fmt.Sprintf("The owner cancelled your seat on the %s", targetNoun(c))
	} else {
		message = fmt.Sprintf("The passenger gave up their seat on your %s", targetNoun(c))
	}
	return s.send(ctx, Notification{
		Type:        NotificationSeatCancelled,
		RecipientID: c.OtherParty(actorID),
		ActorID:     actorID,
		ActorRole:   role,
		Title:       "Seat Cancelled",
		Message:     message,
		Data:        confirmationData(c),
	})
}

// NotifyDecisionReversed notifies the other party that a rejection or
// cancellation was undone.
func (s *NotificationService) NotifyDecisionReversed(ctx context.Context, c *domain.Confirmation, actorID string) error {
	return s.send(ctx, Notification{
		Type:        NotificationDecisionReversed,
		RecipientID: c.OtherParty(actorID),
		ActorID:     actorID,
		ActorRole:   c.RoleOf(actorID),
		Title:       "Decision Reversed",
		Message:     fmt.Sprintf("The seat on the %s was restored", targetNoun(c)),
		Data:        confirmationData(c),
	})
}

// NotifyRequestExpired notifies the passenger that a pending request
// expired because the departure passed.
func (s *NotificationService) NotifyRequestExpired(ctx context.Context, c *domain.Confirmation) error {
	return s.send(ctx, Notification{
		Type:        NotificationRequestExpired,
		RecipientID: c.PassengerID,
		Title:       "Request Expired",
		Message:     fmt.Sprintf("Your request expired because the %s already departed", targetNoun(c)),
		Data:        confirmationData(c),
	})
}

func (s *NotificationService) send(ctx context.Context, n Notification) error {
	n.CreatedAt = time.Now()
	return s.sender.Send(ctx, n)
}

func targetNoun(c *domain.Confirmation) string {
	if c.Target.Kind == domain.TargetTrip {
		return "trip"
	}
	return "ride"
}

func confirmationData(c *domain.Confirmation) map[string]interface{} {
	data := map[string]interface{}{
		"confirmation_id": c.ID,
		"status":          c.Status,
	}
	if c.Reason != "" {
		data["reason"] = c.Reason
	}
	switch c.Target.Kind {
	case domain.TargetRide:
		data["ride_id"] = c.Target.ID
	case domain.TargetTrip:
		data["trip_id"] = c.Target.ID
	}
	return data
}
