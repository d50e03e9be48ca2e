package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// invoice_date is a DATE column; it is read back as YYYY-MM-DD text.
const invoiceSelect = `
	SELECT id, user_id, invoice_number, invoice_date::text AS invoice_date, created_at,
	       business_name, business_address, gst_number, proprietor_name, contact_number, business_email,
	       customer_name, customer_phone, from_location, to_location,
	       distance_km, price_per_km, gst_percentage, vehicle_number,
	       base_amount, gst_amount, total_amount
	FROM invoices
`

const invoiceInsert = `
	INSERT INTO invoices (
		id, user_id, invoice_number, invoice_date, created_at,
		business_name, business_address, gst_number, proprietor_name, contact_number, business_email,
		customer_name, customer_phone, from_location, to_location,
		distance_km, price_per_km, gst_percentage, vehicle_number,
		base_amount, gst_amount, total_amount
	) VALUES (
		:id, :user_id, :invoice_number, :invoice_date, :created_at,
		:business_name, :business_address, :gst_number, :proprietor_name, :contact_number, :business_email,
		:customer_name, :customer_phone, :from_location, :to_location,
		:distance_km, :price_per_km, :gst_percentage, :vehicle_number,
		:base_amount, :gst_amount, :total_amount
	)
`

// PostgresInvoiceStore implements InvoiceStore on PostgreSQL.
type PostgresInvoiceStore struct {
	db     *sqlx.DB
	logger *logging.LoggerV2
}

func NewPostgresInvoiceStore(db *sqlx.DB, logger *logging.LoggerV2) *PostgresInvoiceStore {
	return &PostgresInvoiceStore{db: db, logger: logger}
}

// Create runs the insert in a transaction bound to ctx. When ctx expires
// before commit the transaction is rolled back by database/sql.
func (r *PostgresInvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	r.logger.Debug("Inserting invoice", logging.Fields{
		"invoice_number": inv.InvoiceNumber,
		"user_id":        inv.UserID,
	})

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify("invoices.begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, invoiceInsert, inv); err != nil {
		return classify("invoices.create", err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit invoice", logging.Fields{
			"invoice_number": inv.InvoiceNumber,
			"error":          err.Error(),
		})
		return classify("invoices.commit", err)
	}

	r.logger.Info("Invoice stored", logging.Fields{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"user_id":        inv.UserID,
	})
	return nil
}

func (r *PostgresInvoiceStore) GetByNumber(ctx context.Context, userID, number string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.GetContext(ctx, &inv, invoiceSelect+`WHERE user_id = $1 AND invoice_number = $2`, userID, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, classify("invoices.get", err)
	}
	return &inv, nil
}

func (r *PostgresInvoiceStore) ListByUserID(ctx context.Context, userID string) ([]*models.Invoice, error) {
	invoices := make([]*models.Invoice, 0)
	err := r.db.SelectContext(ctx, &invoices,
		invoiceSelect+`WHERE user_id = $1 ORDER BY created_at DESC, invoice_number DESC`, userID)
	if err != nil {
		return nil, classify("invoices.list", err)
	}

	r.logger.Debug("Invoices listed", logging.Fields{
		"user_id": userID,
		"count":   len(invoices),
	})
	return invoices, nil
}
