package connect

import "runcoach/internal/workout"

// calendarResponse is the body of GET /calendar/workouts
type calendarResponse struct {
	Date     string             `json:"date"`
	Workouts []workout.Document `json:"workouts"`
}

// apiErrorBody is the error envelope returned on non-2xx responses
type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
