package usecase

import (
	"context"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

type ScreenshotRepository interface {
	AddScreenshot(ctx context.Context, shot domain.Screenshot) error
	ListScreenshots(ctx context.Context) ([]domain.Screenshot, error)
	GetScreenshot(ctx context.Context, id string) (domain.Screenshot, bool, error)
	DeleteScreenshot(ctx context.Context, id string) error
}

type CatalogRepository interface {
	ListCars(ctx context.Context) ([]domain.Car, error)
	GetCar(ctx context.Context, id string) (domain.Car, bool, error)
	ListBackgrounds(ctx context.Context) ([]domain.BackgroundOption, error)
	GetBackground(ctx context.Context, id string) (domain.BackgroundOption, bool, error)
}
