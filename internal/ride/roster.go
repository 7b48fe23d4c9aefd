package ride

import "github.com/example/ride-booking/internal/models"

// DefaultRoster is the fixed driver pool used for simulated assignment.
func DefaultRoster() []models.Driver {
	return []models.Driver{
		{Name: "Suresh", Rating: 4.9, Vehicle: "Toyota Innova", Plate: "AP 01 XY 1234"},
		{Name: "Raju", Rating: 4.7, Vehicle: "Hyundai Verna", Plate: "KA 02 AB 5678"},
		{Name: "Babu", Rating: 4.8, Vehicle: "Honda City", Plate: "TN 03 CD 9876"},
	}
}
