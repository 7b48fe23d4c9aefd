package ride

import (
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/example/ride-booking/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Append(r *models.RideRecord) error {
	driverName, driverRating, driverVehicle, driverPlate := "", 0.0, "", ""
	if r.Driver != nil {
		driverName, driverRating, driverVehicle, driverPlate = r.Driver.Name, r.Driver.Rating, r.Driver.Vehicle, r.Driver.Plate
	}
	_, err := p.db.Exec(`INSERT INTO rides(id, pickup, destination, ride_class, cost, status, created_at, driver_name, driver_rating, driver_vehicle, driver_plate, feedback, user_rating)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		r.ID, r.Pickup.PlaceName, r.Destination.PlaceName, string(r.RideClass), r.Cost, string(r.Status), r.CreatedAt,
		driverName, driverRating, driverVehicle, driverPlate, r.Feedback, r.DriverRating)
	return err
}

func (p *PostgresStore) ListAll() ([]models.RideRecord, error) {
	rows, err := p.db.Query(`SELECT id, pickup, destination, ride_class, cost, status, created_at, driver_name, driver_rating, driver_vehicle, driver_plate, feedback, user_rating
		FROM rides ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.RideRecord
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) UpdateLatest(mutate func(*models.RideRecord)) error {
	row := p.db.QueryRow(`SELECT id FROM rides ORDER BY created_at DESC LIMIT 1`)
	var id string
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return ErrRideNotFound
		}
		return err
	}
	return p.UpdateByID(id, mutate)
}

func (p *PostgresStore) UpdateByID(id string, mutate func(*models.RideRecord)) error {
	row := p.db.QueryRow(`SELECT id, pickup, destination, ride_class, cost, status, created_at, driver_name, driver_rating, driver_vehicle, driver_plate, feedback, user_rating
		FROM rides WHERE id = $1`, id)
	r, err := scanRide(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRideNotFound
		}
		return err
	}
	mutate(&r)
	_, err = p.db.Exec(`UPDATE rides SET status=$1, feedback=$2, user_rating=$3 WHERE id=$4`,
		string(r.Status), r.Feedback, r.DriverRating, r.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (models.RideRecord, error) {
	var r models.RideRecord
	var class, status, driverName, driverVehicle, driverPlate string
	var driverRating float64
	err := row.Scan(&r.ID, &r.Pickup.PlaceName, &r.Destination.PlaceName, &class, &r.Cost, &status, &r.CreatedAt,
		&driverName, &driverRating, &driverVehicle, &driverPlate, &r.Feedback, &r.DriverRating)
	if err != nil {
		return models.RideRecord{}, err
	}
	r.RideClass = models.RideClass(class)
	r.Status = models.RideStatus(status)
	if driverName != "" {
		r.Driver = &models.Driver{Name: driverName, Rating: driverRating, Vehicle: driverVehicle, Plate: driverPlate}
	}
	return r, nil
}
