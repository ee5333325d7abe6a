package domain

// Represents one stored position sample.
// IDs are assigned by the storage engine on insert and never reused;
// a record is never updated once written.
type LocationRecord struct {
	ID        int64
	Latitude  float64
	Longitude float64
}

// Return the record's position as Coordinates.
func (r LocationRecord) Coordinates() Coordinates {
	return Coordinates{Lat: r.Latitude, Lon: r.Longitude}
}
