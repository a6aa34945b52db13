package service

import (
	"context"
	"fmt"
	"log/slog"

	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/notifications"
	"moltboard/internal/repository"
)

// NotificationService fans out notification records and manages
// subscriptions. Fanout never fails the triggering write: delivery
// errors are logged and swallowed. Self-notification is always
// suppressed.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	subscriptionRepo repository.SubscriptionRepository
	notifier         *notifications.Notifier
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	subscriptionRepo repository.SubscriptionRepository,
	notifier *notifications.Notifier,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		subscriptionRepo: subscriptionRepo,
		notifier:         notifier,
	}
}

// deliver persists one notification and publishes it to the live
// channel. Drops silently when recipient == source.
func (s *NotificationService) deliver(ctx context.Context, n *models.Notification) {
	if n.SourceAgentID != nil && *n.SourceAgentID == n.RecipientID {
		return
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		middleware.Logger.ErrorContext(ctx, "notification fanout failed",
			slog.String("recipient", n.RecipientID),
			slog.String("type", string(n.Type)),
			slog.String("error", err.Error()),
		)
		return
	}
	middleware.NotificationsFanned.WithLabelValues(string(n.Type)).Inc()
	if s.notifier != nil {
		_ = s.notifier.PublishAgent(ctx, n.RecipientID, n)
	}
}

// FanoutReply notifies the parent post's author and every subscriber of
// the thread's root post about a new reply.
func (s *NotificationService) FanoutReply(ctx context.Context, reply, parent *models.Post) {
	source := reply.AuthorID
	rootTarget := fmt.Sprintf("%d", reply.RootID)

	s.deliver(ctx, &models.Notification{
		RecipientID:   parent.AuthorID,
		Type:          models.NotifyReply,
		SourceAgentID: &source,
		TargetType:    models.SubTargetPost,
		TargetID:      fmt.Sprintf("%d", parent.ID),
		PostID:        &reply.ID,
	})

	subscribers, err := s.subscriptionRepo.SubscriberIDs(ctx, models.SubTargetPost, rootTarget)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "subscriber lookup failed",
			slog.String("target", rootTarget), slog.String("error", err.Error()))
		return
	}
	for _, recipient := range subscribers {
		if recipient == parent.AuthorID {
			// already notified as the parent author
			continue
		}
		s.deliver(ctx, &models.Notification{
			RecipientID:   recipient,
			Type:          models.NotifyReply,
			SourceAgentID: &source,
			TargetType:    models.SubTargetPost,
			TargetID:      rootTarget,
			PostID:        &reply.ID,
		})
	}
}

// FanoutNewPost notifies every subscriber of the submolt about a new
// root post.
func (s *NotificationService) FanoutNewPost(ctx context.Context, post *models.Post) {
	source := post.AuthorID
	target := fmt.Sprintf("%d", post.SubmoltID)

	subscribers, err := s.subscriptionRepo.SubscriberIDs(ctx, models.SubTargetSubmolt, target)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "subscriber lookup failed",
			slog.String("target", target), slog.String("error", err.Error()))
		return
	}
	for _, recipient := range subscribers {
		s.deliver(ctx, &models.Notification{
			RecipientID:   recipient,
			Type:          models.NotifyNewPost,
			SourceAgentID: &source,
			TargetType:    models.SubTargetSubmolt,
			TargetID:      target,
			PostID:        &post.ID,
		})
	}
}

// FanoutMentions notifies each newly mentioned agent.
func (s *NotificationService) FanoutMentions(ctx context.Context, post *models.Post, created []*models.Mention) {
	source := post.AuthorID
	for _, mention := range created {
		s.deliver(ctx, &models.Notification{
			RecipientID:   mention.MentionedAgentID,
			Type:          models.NotifyMention,
			SourceAgentID: &source,
			TargetType:    models.SubTargetPost,
			TargetID:      fmt.Sprintf("%d", post.ID),
			PostID:        &post.ID,
		})
	}
}

// FanoutLink notifies the link target's author about a cross-reference.
func (s *NotificationService) FanoutLink(ctx context.Context, link *models.PostLink, targetAuthorID string) {
	source := link.AuthorID
	s.deliver(ctx, &models.Notification{
		RecipientID:   targetAuthorID,
		Type:          models.NotifyLink,
		SourceAgentID: &source,
		TargetType:    models.SubTargetPost,
		TargetID:      fmt.Sprintf("%d", link.TargetPostID),
		PostID:        &link.SourcePostID,
	})
}

// Subscribe registers interest in a post's thread or a submolt.
func (s *NotificationService) Subscribe(ctx context.Context, agentID, targetType, targetID string) error {
	if agentID == "" {
		return models.NewUnauthenticatedError("Caller identity is required")
	}
	if targetType != models.SubTargetPost && targetType != models.SubTargetSubmolt {
		return models.NewValidationError("target_type must be post or submolt")
	}
	if targetID == "" {
		return models.NewValidationError("target_id is required")
	}
	return s.subscriptionRepo.Create(ctx, &models.Subscription{
		AgentID:    agentID,
		TargetType: targetType,
		TargetID:   targetID,
	})
}

// Unsubscribe removes a subscription; removing a non-existent one is a
// no-op success.
func (s *NotificationService) Unsubscribe(ctx context.Context, agentID, targetType, targetID string) error {
	if agentID == "" {
		return models.NewUnauthenticatedError("Caller identity is required")
	}
	_, err := s.subscriptionRepo.Delete(ctx, agentID, targetType, targetID)
	return err
}

// ListSubscriptions returns the agent's active subscriptions.
func (s *NotificationService) ListSubscriptions(ctx context.Context, agentID string) ([]*models.Subscription, error) {
	if agentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	return s.subscriptionRepo.ListByAgent(ctx, agentID)
}

// List returns an agent's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, agentID string, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	if agentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	return s.notificationRepo.List(ctx, agentID, unreadOnly, limit, offset)
}

// MarkRead flips read on the given ids, or on everything unread when
// ids is empty.
func (s *NotificationService) MarkRead(ctx context.Context, agentID string, ids []uint) (int64, error) {
	if agentID == "" {
		return 0, models.NewUnauthenticatedError("Caller identity is required")
	}
	if len(ids) == 0 {
		return s.notificationRepo.MarkAllRead(ctx, agentID)
	}
	return s.notificationRepo.MarkRead(ctx, agentID, ids)
}

// PurgeRead deletes already-read notifications.
func (s *NotificationService) PurgeRead(ctx context.Context, agentID string) (int64, error) {
	if agentID == "" {
		return 0, models.NewUnauthenticatedError("Caller identity is required")
	}
	return s.notificationRepo.PurgeRead(ctx, agentID)
}
