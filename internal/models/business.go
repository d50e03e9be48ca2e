package models

import (
	"strings"
	"time"
)

// BusinessProfile is the one-per-user invoicing identity of a travel business.
type BusinessProfile struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	BusinessName    string    `json:"business_name" db:"business_name"`
	BusinessAddress string    `json:"business_address" db:"business_address"`
	GSTNumber       string    `json:"gst_number" db:"gst_number"`
	ProprietorName  string    `json:"proprietor_name" db:"proprietor_name"`
	ContactNumber   string    `json:"contact_number" db:"contact_number"`
	Email           string    `json:"email" db:"email"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// CreateBusinessRequest is the registration payload.
type CreateBusinessRequest struct {
	BusinessName    string `json:"business_name" validate:"min=2"`
	BusinessAddress string `json:"business_address" validate:"min=5"`
	GSTNumber       string `json:"gst_number" validate:"gstin"`
	ProprietorName  string `json:"proprietor_name" validate:"min=2"`
	ContactNumber   string `json:"contact_number" validate:"phone10"`
	Email           string `json:"email" validate:"email"`
}

// Normalize trims surrounding whitespace from every field.
func (r *CreateBusinessRequest) Normalize() {
	r.BusinessName = strings.TrimSpace(r.BusinessName)
	r.BusinessAddress = strings.TrimSpace(r.BusinessAddress)
	r.GSTNumber = strings.TrimSpace(r.GSTNumber)
	r.ProprietorName = strings.TrimSpace(r.ProprietorName)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	r.Email = strings.TrimSpace(r.Email)
}
