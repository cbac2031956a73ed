package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"courtclub/internal/logger"
	"courtclub/internal/metrics"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	maxTries       = 3
)

// Service persists notifications and pushes them through a Redis queue to
// the per-member pub/sub channel. Emit never fails the caller: settlement
// outcomes must not depend on delivery.
type Service struct {
	repo  Repository
	redis *redis.Client
}

func New(repo Repository, redisClient *redis.Client) *Service {
	return &Service{
		repo:  repo,
		redis: redisClient,
	}
}

func memberChannel(memberID int) string {
	return fmt.Sprintf("member:%d:notifications", memberID)
}

func (s *Service) Emit(ctx context.Context, memberID int, title, message, category string) {
	if _, err := s.repo.Insert(ctx, &Notification{
		MemberID: memberID,
		Title:    title,
		Message:  message,
		Category: category,
	}); err != nil {
		logger.Errorf("Failed to store notification for member %d: %v", memberID, err)
	}

	j := job{
		ID:       uuid.NewString(),
		MemberID: memberID,
		Title:    title,
		Message:  message,
		Category: category,
		Created:  time.Now(),
	}

	data, err := json.Marshal(j)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue notification for member %d: %v", memberID, err)
		metrics.RecordNotification(category, "queue_failed")
		return
	}

	metrics.RecordNotification(category, "queued")
	logger.Infof("Notification queued: %s for member %d", title, memberID)
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification service stopped")
			return
		default:
			s.processNext(ctx)
			s.QueueLength(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var j job
	if err := json.Unmarshal([]byte(result[1]), &j); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	j.Tries++
	if err := s.deliver(ctx, j); err != nil {
		logger.Errorf("Failed to deliver notification %s: %v", j.ID, err)

		if j.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(j)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying notification %s (attempt %d)", j.ID, j.Tries+1)
		} else {
			logger.Errorf("Notification %s failed after %d attempts", j.ID, maxTries)
			s.saveFailed(j, err)
		}
		return
	}

	logger.Infof("Notification %s delivered to member %d", j.ID, j.MemberID)
}

func (s *Service) deliver(ctx context.Context, j job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return s.redis.Publish(ctx, memberChannel(j.MemberID), data).Err()
}

func (s *Service) saveFailed(j job, err error) {
	failed := map[string]interface{}{
		"job":   j,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s", j.ID)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (s *Service) List(ctx context.Context, memberID int, unreadOnly bool) ([]Notification, error) {
	return s.repo.ListForMember(ctx, memberID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, memberID, notificationID int) error {
	return s.repo.MarkRead(ctx, memberID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, memberID int) error {
	return s.repo.MarkAllRead(ctx, memberID)
}

func (s *Service) Close() error {
	return s.redis.Close()
}
