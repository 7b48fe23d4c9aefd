package models

import "time"

type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Location pairs a free-text place name with its coordinates.
// Coordinates stay nil until the name has been geocoded.
type Location struct {
	PlaceName string `json:"place_name"`
	Coord     *Coord `json:"coord,omitempty"`
}

type Viewport struct {
	Center Coord   `json:"center"`
	Zoom   float64 `json:"zoom"`
}

// RouteQuote is the displayable result of planning a route.
// A quote is immutable; a re-plan produces a new quote that supersedes it.
type RouteQuote struct {
	DistanceKm int      `json:"distance_km"`
	Geometry   []Coord  `json:"geometry"`
	Viewport   Viewport `json:"viewport"`
}

type RideClass string

const (
	ClassEconomy       RideClass = "economy"
	ClassPremium       RideClass = "premium"
	ClassEconomyShared RideClass = "economy_shared"
	ClassPremiumShared RideClass = "premium_shared"
)

type RideStatus string

const (
	StatusOngoing   RideStatus = "Ongoing"
	StatusCompleted RideStatus = "Completed"
	StatusCancelled RideStatus = "Cancelled"
)

type Driver struct {
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"` // 0..5
	Vehicle string  `json:"vehicle"`
	Plate   string  `json:"plate"`
}

type RideRecord struct {
	ID           string     `json:"id"`
	Pickup       Location   `json:"pickup"`
	Destination  Location   `json:"destination"`
	RideClass    RideClass  `json:"ride_class"`
	Cost         int64      `json:"cost"`
	Status       RideStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	Driver       *Driver    `json:"driver,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
	DriverRating int        `json:"driver_rating,omitempty"`
}

type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// RideEvent is published to the ride-events topic on every lifecycle transition.
type RideEvent struct {
	Event     string     `json:"event"` // booked, cancelled, completed
	RideID    string     `json:"ride_id"`
	Status    RideStatus `json:"status"`
	Cost      int64      `json:"cost"`
	Timestamp time.Time  `json:"timestamp"`
}
