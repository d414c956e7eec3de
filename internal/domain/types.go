package domain

import "time"

// Inspector is a person who can be recorded on an inspection.
type Inspector struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Location is a single geolocation fix.
type Location struct {
	Latitude  float64
	Longitude float64
	// Accuracy in meters, nil when the provider did not report one.
	Accuracy *float64
}

// Entry is one submitted site-visit record. Entries live only for the
// current session.
type Entry struct {
	Settlement  string
	Street      string
	House       string
	Apartment   string
	Room        string
	MeterNumber string
	WorkDate    string
	WorkTime    string
	WorkType    WorkType
	WorkResult  WorkResult
	Access      Access
	Inspector1  string
	Inspector2  string
	PhotoURIs   []string
	Timestamp   time.Time
}
