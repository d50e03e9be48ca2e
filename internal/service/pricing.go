package service

import "github.com/sharadkumardubey/billify-trip-generator/internal/models"

// CalculateCharges computes the charges of a trip. Inputs are validated by
// the caller; the results keep full precision and are rounded only when
// rendered.
func CalculateCharges(distanceKm, pricePerKm, gstPercentage float64) models.Charges {
	base := distanceKm * pricePerKm
	gst := CalculateGST(base, gstPercentage)
	return models.Charges{
		BaseAmount:  base,
		GSTAmount:   gst,
		TotalAmount: base + gst,
	}
}

// CalculateGST returns the GST due on base at the given percentage.
func CalculateGST(base, gstPercentage float64) float64 {
	return base * gstPercentage / 100
}

// Quote validates trip fields that affect pricing and returns the charges.
func Quote(trip *models.TripInput) (*models.QuoteResponse, error) {
	if err := ValidatePricing(trip); err != nil {
		return nil, err
	}
	charges := CalculateCharges(trip.DistanceKm.Float64(), trip.PricePerKm.Float64(), trip.GSTPercentage.Float64())
	if err := ValidateCharges(charges); err != nil {
		return nil, err
	}
	return &models.QuoteResponse{
		Charges:       charges,
		DistanceKm:    trip.DistanceKm.Float64(),
		PricePerKm:    trip.PricePerKm.Float64(),
		GSTPercentage: trip.GSTPercentage.Float64(),
	}, nil
}
