package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/digestlib/backend/internal/models"
	"github.com/digestlib/backend/internal/types"
)

// IProfileService defines the interface for profile and goals operations
type IProfileService interface {
	CreateProfile(ctx context.Context, req *types.CreateProfileRequest) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetProfileDetail(ctx context.Context, id uuid.UUID) (*ProfileDetail, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	UpsertGoals(ctx context.Context, id uuid.UUID, req *types.UpdateGoalsRequest) (*models.ProfileGoals, error)
	GetGoals(ctx context.Context, id uuid.UUID) (*models.ProfileGoals, error)
}

// IIngestService defines the interface for export ingestion
type IIngestService interface {
	IngestSnapCalorie(ctx context.Context, profileID uuid.UUID, r io.Reader) (*IngestResult, error)
}

// IRollupService defines the interface for daily summary recomputation
type IRollupService interface {
	RecomputeDay(ctx context.Context, profileID uuid.UUID, day time.Time) error
}

// IAnalyticsService defines the interface for read-only analytics
type IAnalyticsService interface {
	Trend(ctx context.Context, profileID uuid.UUID, start, end time.Time, metrics []string) (*TrendData, error)
	Averages(ctx context.Context, profileID uuid.UUID, start, end time.Time, metrics []string) (*RollingAverages, error)
	FavoriteFoods(ctx context.Context, profileID uuid.UUID, start, end time.Time, limit int) ([]FavoriteFood, error)
	MealPatterns(ctx context.Context, profileID uuid.UUID, start, end time.Time) ([]MealPattern, error)
	Overview(ctx context.Context, profileID uuid.UUID, refDate time.Time) (*Overview, error)
	DailySummary(ctx context.Context, profileID uuid.UUID, day time.Time) (*models.DailySummary, error)
	Summaries(ctx context.Context, profileID uuid.UUID, start, end *time.Time) ([]models.DailySummary, error)
	RecentEntries(ctx context.Context, profileID uuid.UUID, limit int) ([]models.ConsumptionEntry, error)
}
