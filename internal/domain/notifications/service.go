package notifications

import (
	"context"
	"fmt"
	"log/slog"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Service persists in-app notifications and best-effort mirrors them to
// email. Email failures are logged, never surfaced to the caller.
type Service struct {
	store  StoreAPI
	mailer Mailer
	From   string
}

func New(store StoreAPI, mailer Mailer, from string) *Service {
	if from == "" {
		from = "no-reply@kpitrack.local"
	}
	return &Service{store: store, mailer: mailer, From: from}
}

func (s *Service) notify(ctx context.Context, recipient Recipient, ntype, title, body string) error {
	if err := s.store.CreateNotification(ctx, recipient.UserID, ntype, title, body); err != nil {
		return err
	}
	if s.mailer == nil || recipient.Email == "" {
		return nil
	}
	if err := s.mailer.Send(ctx, s.From, recipient.Email, title, body); err != nil {
		slog.Warn("notification email send failed", "userId", recipient.UserID, "err", err)
	}
	return nil
}

// AssessmentSubmitted fans out to the active managers of the employee's
// division.
func (s *Service) AssessmentSubmitted(ctx context.Context, divisionID, employeeName, kpiName string) error {
	managers, err := s.store.DivisionManagers(ctx, divisionID)
	if err != nil {
		return err
	}
	title := "Assessment awaiting review"
	body := fmt.Sprintf("%s submitted an assessment for %q.", employeeName, kpiName)
	for _, manager := range managers {
		if err := s.notify(ctx, manager, TypeAssessmentSubmitted, title, body); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) AssessmentReviewed(ctx context.Context, employeeID, kpiName, grade string) error {
	recipient, err := s.store.UserRecipient(ctx, employeeID)
	if err != nil {
		return err
	}
	title := "Assessment reviewed"
	body := fmt.Sprintf("Your assessment for %q has been reviewed. Grade: %s.", kpiName, grade)
	return s.notify(ctx, recipient, TypeAssessmentReviewed, title, body)
}

func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}
