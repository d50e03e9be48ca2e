package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// AssembleInvoice builds the invoice record for ownerID. Business fields are
// copied from profile so later profile edits leave the invoice unchanged.
func AssembleInvoice(ownerID string, profile *models.BusinessProfile, trip *models.TripInput, charges models.Charges, number string, now time.Time) *models.Invoice {
	return &models.Invoice{
		ID:            uuid.NewString(),
		UserID:        ownerID,
		InvoiceNumber: number,
		InvoiceDate:   trip.Date,
		CreatedAt:     now.UTC(),

		BusinessName:    profile.BusinessName,
		BusinessAddress: profile.BusinessAddress,
		GSTNumber:       profile.GSTNumber,
		ProprietorName:  profile.ProprietorName,
		ContactNumber:   profile.ContactNumber,
		BusinessEmail:   profile.Email,

		CustomerName:  trip.CustomerName,
		CustomerPhone: trip.CustomerPhone,
		FromLocation:  trip.FromLocation,
		ToLocation:    trip.ToLocation,
		DistanceKm:    trip.DistanceKm.Float64(),
		PricePerKm:    trip.PricePerKm.Float64(),
		GSTPercentage: trip.GSTPercentage.Float64(),
		VehicleNumber: trip.VehicleNumber,

		BaseAmount:  charges.BaseAmount,
		GSTAmount:   charges.GSTAmount,
		TotalAmount: charges.TotalAmount,
	}
}
