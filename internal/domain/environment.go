package domain

// BackgroundOption pairs one selectable backdrop with its day and night
// variants; the active day/night flag decides which image path is sent to
// the engine.
type BackgroundOption struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DayImage   string `json:"dayImage"`
	NightImage string `json:"nightImage"`
}

// Image resolves the variant for the given day/night flag.
func (b BackgroundOption) Image(isDay bool) string {
	if isDay {
		return b.DayImage
	}
	return b.NightImage
}
