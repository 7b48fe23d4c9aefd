package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ride-booking/internal/chat"
	"github.com/example/ride-booking/internal/fare"
	"github.com/example/ride-booking/internal/ride"
	"github.com/example/ride-booking/internal/routing"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the recoverable booking-domain sentinels onto
// HTTP statuses. Anything unrecognized is a plain 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrInvalidLocation),
		errors.Is(err, routing.ErrCrossBorder),
		errors.Is(err, routing.ErrNoRoute),
		errors.Is(err, routing.ErrDistanceExceeded):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ride.ErrIncompleteBooking),
		errors.Is(err, ride.ErrRatingRequired),
		errors.Is(err, fare.ErrUnknownClass),
		errors.Is(err, fare.ErrInvalidPartySize):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ride.ErrActiveRide),
		errors.Is(err, ride.ErrNoActiveRide),
		errors.Is(err, ride.ErrNotCompleted),
		errors.Is(err, chat.ErrNotConnected):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ride.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, ride.ErrRideNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
