package domain

// RateCard holds the per-duration and per-distance prices of a vehicle.
// All amounts are integer yen.
type RateCard struct {
	DailyRate     int64
	HourlyRate    int64
	PerKmRate     int64
	DepositAmount int64
}

// Vehicle represents a rentable car.
type Vehicle struct {
	ID          string
	OwnerID     string
	Name        string
	PickupPoint string
	RateCard    RateCard
	Available   bool
}
