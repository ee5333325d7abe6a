package dto

type LocationResponse struct {
	ID        int64   `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ListLocationsResponse struct {
	Locations []LocationResponse `json:"locations"`
}
