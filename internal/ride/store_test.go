package ride

import (
	"testing"

	"github.com/example/ride-booking/internal/models"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	m := NewMemoryStore()
	for _, id := range []string{"1", "2", "3"} {
		if err := m.Append(&models.RideRecord{ID: id, Status: models.StatusOngoing}); err != nil {
			t.Fatalf("Append(%s): %v", id, err)
		}
	}
	all, err := m.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 || all[0].ID != "1" || all[2].ID != "3" {
		t.Fatalf("unexpected order: %+v", all)
	}

	// The returned slice is a copy.
	all[0].Status = models.StatusCancelled
	again, _ := m.ListAll()
	if again[0].Status != models.StatusOngoing {
		t.Fatalf("ListAll leaked internal storage")
	}
}

func TestMemoryStoreUpdateLatest(t *testing.T) {
	m := NewMemoryStore()
	if err := m.UpdateLatest(func(r *models.RideRecord) {}); err != ErrRideNotFound {
		t.Fatalf("expected ErrRideNotFound on empty store, got %v", err)
	}

	m.Append(&models.RideRecord{ID: "1", Status: models.StatusOngoing})
	m.Append(&models.RideRecord{ID: "2", Status: models.StatusOngoing})
	if err := m.UpdateLatest(func(r *models.RideRecord) {
		r.Status = models.StatusCompleted
	}); err != nil {
		t.Fatalf("UpdateLatest: %v", err)
	}

	all, _ := m.ListAll()
	if all[0].Status != models.StatusOngoing || all[1].Status != models.StatusCompleted {
		t.Fatalf("wrong record updated: %+v", all)
	}
}

func TestMemoryStoreUpdateByID(t *testing.T) {
	m := NewMemoryStore()
	m.Append(&models.RideRecord{ID: "1", Status: models.StatusCompleted})
	m.Append(&models.RideRecord{ID: "2", Status: models.StatusCompleted})

	if err := m.UpdateByID("1", func(r *models.RideRecord) {
		r.DriverRating = 5
		r.Feedback = "great"
	}); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	all, _ := m.ListAll()
	if all[0].DriverRating != 5 || all[1].DriverRating != 0 {
		t.Fatalf("wrong record mutated: %+v", all)
	}

	if err := m.UpdateByID("nope", func(r *models.RideRecord) {}); err != ErrRideNotFound {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
}
