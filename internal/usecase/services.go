package usecase

import (
	"context"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// StudioService fronts the screenshot collection and the static catalogs.
// Screenshots are the sole image feed for the AI compositing workflow, so
// removing one removes it from that feed as well.
type StudioService struct {
	shots   ScreenshotRepository
	catalog CatalogRepository
}

func NewStudioService(shots ScreenshotRepository, catalog CatalogRepository) *StudioService {
	return &StudioService{shots: shots, catalog: catalog}
}

func (s *StudioService) AddScreenshot(ctx context.Context, shot domain.Screenshot) error {
	return s.shots.AddScreenshot(ctx, shot)
}

func (s *StudioService) ListScreenshots(ctx context.Context) ([]domain.Screenshot, error) {
	return s.shots.ListScreenshots(ctx)
}

func (s *StudioService) GetScreenshot(ctx context.Context, id string) (domain.Screenshot, bool, error) {
	return s.shots.GetScreenshot(ctx, id)
}

func (s *StudioService) DeleteScreenshot(ctx context.Context, id string) error {
	return s.shots.DeleteScreenshot(ctx, id)
}

func (s *StudioService) ListCars(ctx context.Context) ([]domain.Car, error) {
	return s.catalog.ListCars(ctx)
}

func (s *StudioService) GetCar(ctx context.Context, id string) (domain.Car, bool, error) {
	return s.catalog.GetCar(ctx, id)
}

func (s *StudioService) ListBackgrounds(ctx context.Context) ([]domain.BackgroundOption, error) {
	return s.catalog.ListBackgrounds(ctx)
}

func (s *StudioService) GetBackground(ctx context.Context, id string) (domain.BackgroundOption, bool, error) {
	return s.catalog.GetBackground(ctx, id)
}
