package memory

import (
	"context"
	"testing"
	"time"

	"github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"
)

func TestScreenshotsNewestFirst(t *testing.T) {
	s := NewStore(10, nil, nil)
	ctx := context.Background()
	_ = s.AddScreenshot(ctx, domain.Screenshot{ID: "one", URL: "u1", Timestamp: time.Now()})
	_ = s.AddScreenshot(ctx, domain.Screenshot{ID: "two", URL: "u2", Timestamp: time.Now()})
	shots, err := s.ListScreenshots(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(shots) != 2 || shots[0].ID != "two" || shots[1].ID != "one" {
		t.Fatalf("expected newest first, got %+v", shots)
	}
}

func TestScreenshotsNoDedup(t *testing.T) {
	s := NewStore(10, nil, nil)
	ctx := context.Background()
	_ = s.AddScreenshot(ctx, domain.Screenshot{ID: "a", URL: "same"})
	_ = s.AddScreenshot(ctx, domain.Screenshot{ID: "b", URL: "same"})
	shots, _ := s.ListScreenshots(ctx)
	if len(shots) != 2 {
		t.Fatalf("identical urls must be kept independently, got %d", len(shots))
	}
}

func TestScreenshotDeleteAndCap(t *testing.T) {
	s := NewStore(2, nil, nil)
	ctx := context.Background()
	_ = s.AddScreenshot(ctx, domain.Screenshot{ID: "a"})
	_ = s.AddScreenshot(ctx, domain.Screenshot{ID: "b"})
	_ = s.AddScreenshot(ctx, domain.Screenshot{ID: "c"})
	shots, _ := s.ListScreenshots(ctx)
	if len(shots) != 2 || shots[0].ID != "c" {
		t.Fatalf("cap should evict oldest, got %+v", shots)
	}
	if err := s.DeleteScreenshot(ctx, "c"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetScreenshot(ctx, "c"); ok {
		t.Fatalf("deleted screenshot still present")
	}
}

func TestCatalogLookups(t *testing.T) {
	s := NewStore(10,
		[]domain.Car{{ID: "gt", Name: "GT"}},
		[]domain.BackgroundOption{{ID: "studio", DayImage: "d.png", NightImage: "n.png"}})
	ctx := context.Background()
	if c, ok, _ := s.GetCar(ctx, "gt"); !ok || c.Name != "GT" {
		t.Fatalf("car lookup failed: %+v ok=%v", c, ok)
	}
	b, ok, _ := s.GetBackground(ctx, "studio")
	if !ok || b.Image(true) != "d.png" || b.Image(false) != "n.png" {
		t.Fatalf("background lookup failed: %+v ok=%v", b, ok)
	}
	if _, ok, _ := s.GetCar(ctx, "missing"); ok {
		t.Fatalf("missing car should not resolve")
	}
}
