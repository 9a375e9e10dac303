package domain

// PaymentStatus represents the gateway-side status of a payment intent.
type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "created"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Metadata keys attached to every payment intent for reconciliation.
const (
	MetadataVehicleID     = "vehicle_id"
	MetadataDurationHours = "duration_hours"
	MetadataDistanceKm    = "distance_km"
)

// DefaultCurrency is the only currency the marketplace charges in.
const DefaultCurrency = "jpy"

// PaymentIntent is the application's view of a gateway authorization.
// The gateway owns it; we only keep the reference.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       PaymentStatus
	Metadata     map[string]string
}

// PriceBreakdown is the itemized cost of a prospective rental.
type PriceBreakdown struct {
	BaseAmount      int64
	DistanceAmount  int64
	InsuranceAmount int64
	DepositAmount   int64
	TotalAmount     int64
}
