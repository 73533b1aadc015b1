package services

import (
	"context"
	"errors"
	"fmt"

	"connectly/database"
	"connectly/helper"
	"connectly/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	notifications NotificationStore
}

func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, callerID primitive.ObjectID) ([]models.Notification, error) {
	out, err := s.notifications.ListForRecipient(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, callerID, id primitive.ObjectID) error {
	return notFoundOr(s.notifications.MarkRead(ctx, callerID, id), "mark notification read")
}

func (s *NotificationService) MarkAllRead(ctx context.Context, callerID primitive.ObjectID) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, callerID primitive.ObjectID) (int64, error) {
	n, err := s.notifications.CountUnread(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, callerID, id primitive.ObjectID) error {
	return notFoundOr(s.notifications.Delete(ctx, callerID, id), "delete notification")
}

func (s *NotificationService) DeleteAll(ctx context.Context, callerID primitive.ObjectID) (int64, error) {
	n, err := s.notifications.DeleteAll(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	return n, nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, database.ErrNotFound) {
		return helper.NotFound("Notification not found")
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
