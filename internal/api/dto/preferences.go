package dto

type DarkModeRequest struct {
	Enabled *bool `json:"enabled"`
}

type DarkModeResponse struct {
	Enabled bool `json:"enabled"`
}
