package memory

import (
	"context"
	"sync"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

// Store keeps all session state in memory: the screenshot collection plus
// the static car and background catalogs. Screenshots are held newest first
// and capped; the oldest entry is evicted at capacity.
type Store struct {
	mu          sync.RWMutex
	screenshots []domain.Screenshot
	maxShots    int

	cars        []domain.Car
	backgrounds []domain.BackgroundOption
}

func NewStore(maxScreenshots int, cars []domain.Car, backgrounds []domain.BackgroundOption) *Store {
	if maxScreenshots <= 0 {
		maxScreenshots = 100
	}
	return &Store{
		screenshots: make([]domain.Screenshot, 0, 16),
		maxShots:    maxScreenshots,
		cars:        cars,
		backgrounds: backgrounds,
	}
}

// ScreenshotRepository

func (s *Store) AddScreenshot(ctx context.Context, shot domain.Screenshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// newest first; no dedup of identical urls
	s.screenshots = append([]domain.Screenshot{shot}, s.screenshots...)
	if len(s.screenshots) > s.maxShots {
		s.screenshots = s.screenshots[:s.maxShots]
	}
	return nil
}

func (s *Store) ListScreenshots(ctx context.Context) ([]domain.Screenshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Screenshot, len(s.screenshots))
	copy(out, s.screenshots)
	return out, nil
}

func (s *Store) GetScreenshot(ctx context.Context, id string) (domain.Screenshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, shot := range s.screenshots {
		if shot.ID == id {
			return shot, true, nil
		}
	}
	return domain.Screenshot{}, false, nil
}

func (s *Store) DeleteScreenshot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, shot := range s.screenshots {
		if shot.ID == id {
			s.screenshots = append(s.screenshots[:i], s.screenshots[i+1:]...)
			return nil
		}
	}
	return nil
}

// CatalogRepository

func (s *Store) ListCars(ctx context.Context) ([]domain.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Car, len(s.cars))
	copy(out, s.cars)
	return out, nil
}

func (s *Store) GetCar(ctx context.Context, id string) (domain.Car, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.cars {
		if c.ID == id {
			return c, true, nil
		}
	}
	return domain.Car{}, false, nil
}

func (s *Store) ListBackgrounds(ctx context.Context) ([]domain.BackgroundOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.BackgroundOption, len(s.backgrounds))
	copy(out, s.backgrounds)
	return out, nil
}

func (s *Store) GetBackground(ctx context.Context, id string) (domain.BackgroundOption, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.backgrounds {
		if b.ID == id {
			return b, true, nil
		}
	}
	return domain.BackgroundOption{}, false, nil
}
