package service

const (
	// FitExt is the extension of activity files in the FIT directory
	FitExt = ".fit"

	// ActivityListLimit caps the activity list, most recent first
	ActivityListLimit = 20

	// DecodeConcurrency bounds parallel FIT decodes during a directory scan
	DecodeConcurrency = 4

	// MetersPerKm converts session distance for list views
	MetersPerKm = 1000.0
)
