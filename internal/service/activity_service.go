package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"safebox/internal/model"
	"safebox/internal/repository"
)

// RecentActivityLimit bounds the activity feed.
const RecentActivityLimit = 10

// ActivityService records and reads user activity.
type ActivityService interface {
	// Record appends an entry. Failures are logged, never returned: the
	// action being recorded has already happened.
	Record(ctx context.Context, userID uint, action string)
	Recent(ctx context.Context, userID uint) ([]model.ActivityLog, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

// NewActivityService builds an ActivityService.
func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, userID uint, action string) {
	if err := s.repo.Append(ctx, &model.ActivityLog{UserID: userID, Action: action}); err != nil {
		zap.L().Warn("record activity failed",
			zap.Uint("user_id", userID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *activityService) Recent(ctx context.Context, userID uint) ([]model.ActivityLog, error) {
	entries, err := s.repo.Recent(ctx, userID, RecentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("load activity: %w", err)
	}
	return entries, nil
}
