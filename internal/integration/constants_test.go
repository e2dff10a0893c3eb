package integration_test

const (
	// User related constants
	TestUserFirstName = "Freddie"
	TestUserLastName  = "Mercury"
	TestUserEmail     = "freddie@example.com"
	TestUserPassword  = "Test123!@#"

	// Showtime related constants
	TestMovieId     = 550
	TestMovieTitle  = "Fight Club"
	TestTheaterId   = "ChIJ-test-theater"
	TestTheaterName = "Galaxy Cinema"
	TestShowtime    = "7:00 PM"

	// Payment related constants
	TestSigningSecret = "integration-secret"
	TestSuccessURL    = "http://localhost:5173/booking-success"
	TestTimezone      = "Asia/Kolkata"
)
