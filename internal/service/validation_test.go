package service

import (
	"math"
	"testing"
	"time"

	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrip() *models.TripInput {
	return &models.TripInput{
		FromLocation:  "Pune",
		ToLocation:    "Goa",
		DistanceKm:    230,
		PricePerKm:    15,
		GSTPercentage: 5,
		CustomerName:  "Anita Rao",
		CustomerPhone: "9123456780",
		Date:          "2026-10-04",
	}
}

func validBusiness() *models.CreateBusinessRequest {
	return &models.CreateBusinessRequest{
		BusinessName:    "Sharma Travels",
		BusinessAddress: "12 MG Road, Pune",
		GSTNumber:       "22AAAAA0000A1Z5",
		ProprietorName:  "Ravi Sharma",
		ContactNumber:   "9876543210",
		Email:           "ravi@example.com",
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("9876543210"))
	assert.False(t, IsValidPhone("98765432"))
	assert.False(t, IsValidPhone("98765432ab"))
	assert.False(t, IsValidPhone("98765432100"))
	assert.False(t, IsValidPhone(""))
}

func TestIsValidGSTIN(t *testing.T) {
	assert.True(t, IsValidGSTIN("22AAAAA0000A1Z5"))
	assert.True(t, IsValidGSTIN("27ABCDE1234FZZ9"))
	assert.False(t, IsValidGSTIN("22aaaaa0000a1z5"))
	assert.False(t, IsValidGSTIN("22AAAAA0000A1Z"))
	assert.False(t, IsValidGSTIN("22AAAAA0000A0Z5"), "entity code cannot be zero")
	assert.False(t, IsValidGSTIN("22AAAAA0000A1X5"))
}

func TestValidateTripInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.TripInput)
		field   string
		message string
	}{
		{"valid", func(*models.TripInput) {}, "", ""},
		{"gst at maximum", func(in *models.TripInput) { in.GSTPercentage = 28 }, "", ""},
		{"gst zero", func(in *models.TripInput) { in.GSTPercentage = 0 }, "", ""},
		{"gst above maximum", func(in *models.TripInput) { in.GSTPercentage = 28.01 }, "gst_percentage", "GST cannot exceed 28%"},
		{"gst negative", func(in *models.TripInput) { in.GSTPercentage = -1 }, "gst_percentage", "GST cannot be negative"},
		{"zero distance", func(in *models.TripInput) { in.DistanceKm = 0 }, "distance_km", "Distance must be a positive number"},
		{"zero rate", func(in *models.TripInput) { in.PricePerKm = 0 }, "price_per_km", "Price must be a positive number"},
		{"short origin", func(in *models.TripInput) { in.FromLocation = "P" }, "from_location", "Starting location is required"},
		{"missing destination", func(in *models.TripInput) { in.ToLocation = "" }, "to_location", "Destination is required"},
		{"short customer", func(in *models.TripInput) { in.CustomerName = "A" }, "customer_name", "Customer name is required"},
		{"bad phone", func(in *models.TripInput) { in.CustomerPhone = "98765432ab" }, "customer_phone", "Phone number must be 10 digits"},
		{"bad date", func(in *models.TripInput) { in.Date = "04/10/2026" }, "date", "Date must be in YYYY-MM-DD format"},
		{"long vehicle number", func(in *models.TripInput) { in.VehicleNumber = "MH12AB1234MH12AB12345" }, "vehicle_number", "Vehicle number must be at most 20 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validTrip()
			tt.mutate(in)

			err := ValidateTripInput(in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var verr *errors.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.message, verr.Details[tt.field])
		})
	}
}

func TestValidateTripInput_ReportsEveryField(t *testing.T) {
	err := ValidateTripInput(&models.TripInput{})

	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"from_location", "to_location", "distance_km", "price_per_km", "customer_name", "customer_phone", "date"} {
		assert.Contains(t, verr.Details, field)
	}
	assert.NotContains(t, verr.Details, "gst_percentage")
	assert.NotContains(t, verr.Details, "vehicle_number")
}

func TestValidateBusinessProfile(t *testing.T) {
	assert.NoError(t, ValidateBusinessProfile(validBusiness()))

	req := validBusiness()
	req.BusinessName = "S"
	req.BusinessAddress = "Pune"
	req.GSTNumber = "22aaaaa0000a1z5"
	req.ContactNumber = "12345"
	req.Email = "not-an-email"

	err := ValidateBusinessProfile(req)
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Business name must be at least 2 characters", verr.Details["business_name"])
	assert.Equal(t, "Address must be at least 5 characters", verr.Details["business_address"])
	assert.Equal(t, "Invalid GST number format", verr.Details["gst_number"])
	assert.Equal(t, "Contact number must be 10 digits", verr.Details["contact_number"])
	assert.Equal(t, "Invalid email address", verr.Details["email"])
	assert.NotContains(t, verr.Details, "proprietor_name")
}

func TestApplyTripDefaults(t *testing.T) {
	in := &models.TripInput{
		FromLocation:  "  Pune ",
		VehicleNumber: " mh12ab1234 ",
	}
	ApplyTripDefaults(in, time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC))

	assert.Equal(t, "Pune", in.FromLocation)
	assert.Equal(t, "MH12AB1234", in.VehicleNumber)
	assert.Equal(t, "2026-10-18", in.Date)
}

func TestValidatePricing_IgnoresOtherFields(t *testing.T) {
	assert.NoError(t, ValidatePricing(&models.TripInput{DistanceKm: 10, PricePerKm: 2, GSTPercentage: 12}))

	err := ValidatePricing(&models.TripInput{DistanceKm: 10, PricePerKm: 2, GSTPercentage: 40})
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Details, 1)
}

func TestValidatePricing_RejectsNonFinite(t *testing.T) {
	trip := &models.TripInput{DistanceKm: models.Number(math.Inf(1)), PricePerKm: 15, GSTPercentage: 5}

	err := ValidatePricing(trip)
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Distance must be a finite number", verr.Details["distance_km"])
}

func TestValidateCharges(t *testing.T) {
	assert.NoError(t, ValidateCharges(CalculateCharges(230, 15, 5)))

	err := ValidateCharges(CalculateCharges(1e200, 1e200, 5))
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Details, "distance_km")
	assert.Contains(t, verr.Details, "price_per_km")
}
