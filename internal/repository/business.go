package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

const businessColumns = `id, user_id, business_name, business_address, gst_number,
	proprietor_name, contact_number, email, created_at`

// PostgresBusinessStore implements BusinessStore on PostgreSQL.
type PostgresBusinessStore struct {
	db     *sqlx.DB
	logger *logging.LoggerV2
}

func NewPostgresBusinessStore(db *sqlx.DB, logger *logging.LoggerV2) *PostgresBusinessStore {
	return &PostgresBusinessStore{db: db, logger: logger}
}

// Create inserts a new profile. A second profile for the same user fails
// with a duplicate StorageError.
func (r *PostgresBusinessStore) Create(ctx context.Context, profile *models.BusinessProfile) error {
	query := `
		INSERT INTO businesses (` + businessColumns + `)
		VALUES (:id, :user_id, :business_name, :business_address, :gst_number,
		        :proprietor_name, :contact_number, :email, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		r.logger.Error("Failed to create business profile", logging.Fields{
			"user_id": profile.UserID,
			"error":   err.Error(),
		})
		return classify("businesses.create", err)
	}

	r.logger.Info("Business profile created", logging.Fields{
		"business_id": profile.ID,
		"user_id":     profile.UserID,
	})
	return nil
}

func (r *PostgresBusinessStore) GetByUserID(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	r.logger.Debug("Fetching business profile", logging.Fields{"user_id": userID})

	var profile models.BusinessProfile
	err := r.db.GetContext(ctx, &profile, `SELECT `+businessColumns+` FROM businesses WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, classify("businesses.get", err)
	}
	return &profile, nil
}

func (r *PostgresBusinessStore) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM businesses WHERE user_id = $1)`, userID)
	if err != nil {
		return false, classify("businesses.exists", err)
	}
	return exists, nil
}
