package service

import (
	"math"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// DateLayout is the ISO calendar date format used for trip dates.
const DateLayout = "2006-01-02"

var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// fieldMessages maps "<json field>.<tag>" to the message shown to the user.
var fieldMessages = map[string]string{
	"business_name.min":      "Business name must be at least 2 characters",
	"business_address.min":   "Address must be at least 5 characters",
	"gst_number.gstin":       "Invalid GST number format",
	"proprietor_name.min":    "Proprietor name must be at least 2 characters",
	"contact_number.phone10": "Contact number must be 10 digits",
	"email.email":            "Invalid email address",

	"from_location.min":      "Starting location is required",
	"to_location.min":        "Destination is required",
	"distance_km.finite":     "Distance must be a finite number",
	"distance_km.gt":         "Distance must be a positive number",
	"price_per_km.finite":    "Price must be a finite number",
	"price_per_km.gt":        "Price must be a positive number",
	"gst_percentage.finite":  "GST must be a finite number",
	"gst_percentage.gte":     "GST cannot be negative",
	"gst_percentage.lte":     "GST cannot exceed 28%",
	"customer_name.min":      "Customer name is required",
	"customer_phone.phone10": "Phone number must be 10 digits",
	"date.datetime":          "Date must be in YYYY-MM-DD format",
	"vehicle_number.max":     "Vehicle number must be at most 20 characters",
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
			return IsValidGSTIN(fl.Field().String())
		})
		_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsInf(f, 0) && !math.IsNaN(f)
		})
		validate = v
	})
	return validate
}

// IsValidGSTIN reports whether s is a well-formed Indian GST identification number.
func IsValidGSTIN(s string) bool {
	return gstinPattern.MatchString(s)
}

// IsValidPhone reports whether s is exactly ten digits.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// ValidateBusinessProfile validates a registration request.
func ValidateBusinessProfile(req *models.CreateBusinessRequest) error {
	return validateStruct(req)
}

// ValidateTripInput validates every trip field.
func ValidateTripInput(trip *models.TripInput) error {
	return validateStruct(trip)
}

// ValidatePricing validates only the fields the calculator consumes.
func ValidatePricing(trip *models.TripInput) error {
	return validateStruct(trip, "DistanceKm", "PricePerKm", "GSTPercentage")
}

// ValidateCharges rejects charges that overflowed the float range, which
// finite inputs can still produce when distance and rate are both huge.
func ValidateCharges(c models.Charges) error {
	for _, v := range []float64{c.BaseAmount, c.GSTAmount, c.TotalAmount} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return errors.NewFieldErrors(map[string]string{
				"distance_km":  "Distance and price give an amount too large to bill",
				"price_per_km": "Distance and price give an amount too large to bill",
			})
		}
	}
	return nil
}

// ApplyTripDefaults normalizes trip and fills an empty date with today.
func ApplyTripDefaults(trip *models.TripInput, now time.Time) {
	trip.Normalize()
	if trip.Date == "" {
		trip.Date = now.Format(DateLayout)
	}
}

func validateStruct(v interface{}, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = validatorInstance().StructPartial(v, fields...)
	} else {
		err = validatorInstance().Struct(v)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := details[field]; seen {
			continue
		}
		details[field] = messageFor(field, fe.Tag())
	}
	return errors.NewFieldErrors(details)
}

func messageFor(field, tag string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	return field + " is invalid"
}
