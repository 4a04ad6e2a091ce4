package models

// City represents a city that routes can start from, end at or pass through
type City struct {
	ID   string  `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	Lat  float64 `json:"lat" db:"lat"`
	Lon  float64 `json:"lon" db:"lon"`
}
