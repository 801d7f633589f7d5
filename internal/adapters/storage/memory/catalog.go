package memory

import "github.com/house-360-vn/virtual-studio-web-remove-background/internal/domain"

// DefaultCars is the built-in showroom catalog used when no external
// catalog source is configured.
func DefaultCars() []domain.Car {
	return []domain.Car{
		{ID: "vf8", Name: "VF 8", Price: "$46,000", Thumbnail: "/assets/cars/vf8.png"},
		{ID: "vf9", Name: "VF 9", Price: "$69,800", Thumbnail: "/assets/cars/vf9.png"},
		{ID: "vf7", Name: "VF 7", Price: "$36,000", Thumbnail: "/assets/cars/vf7.png"},
		{ID: "vf6", Name: "VF 6", Price: "$28,000", Thumbnail: "/assets/cars/vf6.png"},
	}
}

// DefaultBackgrounds lists the scene options with their day and night
// image variants.
func DefaultBackgrounds() []domain.BackgroundOption {
	return []domain.BackgroundOption{
		{ID: "studio", Name: "Studio", DayImage: "/assets/bg/studio_day.jpg", NightImage: "/assets/bg/studio_night.jpg"},
		{ID: "city", Name: "City", DayImage: "/assets/bg/city_day.jpg", NightImage: "/assets/bg/city_night.jpg"},
		{ID: "coast", Name: "Coast", DayImage: "/assets/bg/coast_day.jpg", NightImage: "/assets/bg/coast_night.jpg"},
		{ID: "mountain", Name: "Mountain", DayImage: "/assets/bg/mountain_day.jpg", NightImage: "/assets/bg/mountain_night.jpg"},
	}
}
