package domain

// Car is a static catalog entry; runtime load progress lives in CarLoadState.
type Car struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Thumbnail string `json:"thumbnail"`
}

type CarLoadState string

const (
	CarNotLoaded CarLoadState = "NotLoaded"
	CarLoading   CarLoadState = "Loading"
	CarLoaded    CarLoadState = "Loaded"
)
