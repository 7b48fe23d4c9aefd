package fare

import (
	"fmt"
	"math"

	"github.com/example/ride-booking/internal/models"
)

// Rate holds the pricing constants for one ride class.
type Rate struct {
	BasePrice  float64
	PricePerKm float64
}

var rates = map[models.RideClass]Rate{
	models.ClassEconomy:       {BasePrice: 50, PricePerKm: 10},
	models.ClassPremium:       {BasePrice: 100, PricePerKm: 15},
	models.ClassEconomyShared: {BasePrice: 40, PricePerKm: 8},
	models.ClassPremiumShared: {BasePrice: 80, PricePerKm: 12},
}

var (
	ErrUnknownClass     = fmt.Errorf("unknown ride class")
	ErrInvalidPartySize = fmt.Errorf("party size must be positive")
)

// Quote returns the total fare for a ride class over the given distance.
func Quote(class models.RideClass, distanceKm int) (int64, error) {
	r, ok := rates[class]
	if !ok {
		return 0, ErrUnknownClass
	}
	return int64(math.Round(r.BasePrice + r.PricePerKm*float64(distanceKm))), nil
}

// Split returns the per-person share of a shared ride's fare.
func Split(class models.RideClass, distanceKm, partySize int) (int64, error) {
	if partySize <= 0 {
		return 0, ErrInvalidPartySize
	}
	total, err := Quote(class, distanceKm)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(float64(total) / float64(partySize))), nil
}

// Display formats a fare for the ride-class cards. A nil distance means no
// quote exists yet and renders as the "--" placeholder.
func Display(class models.RideClass, distanceKm *int) string {
	if distanceKm == nil {
		return "--"
	}
	total, err := Quote(class, *distanceKm)
	if err != nil {
		return "--"
	}
	return fmt.Sprintf("₹%d", total)
}

// Classes lists the known ride classes in display order.
func Classes() []models.RideClass {
	return []models.RideClass{
		models.ClassEconomy,
		models.ClassPremium,
		models.ClassEconomyShared,
		models.ClassPremiumShared,
	}
}
