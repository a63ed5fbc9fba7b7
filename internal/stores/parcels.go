// Package stores provides the gorm-backed implementations of the ledger's
// store interfaces.
package stores

import (
	"context"
	"errors"

	"github.com/sojib-web/zap-shift-server/internal/ledger"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"gorm.io/gorm"
)

// ParcelStore implements ledger.ParcelStore on top of gorm.
type ParcelStore struct {
	db *gorm.DB
}

func NewParcelStore(db *gorm.DB) *ParcelStore {
	return &ParcelStore{db: db}
}

func (s *ParcelStore) FindByID(ctx context.Context, id uint) (*models.Parcel, error) {
	var parcel models.Parcel
	if err := s.db.WithContext(ctx).First(&parcel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrParcelNotFound
		}
		return nil, err
	}
	return &parcel, nil
}

// ConditionallyMarkPaid is a single atomic compare-and-set restricted to the
// identified parcel: the update only applies while payment_status is unpaid.
func (s *ParcelStore) ConditionallyMarkPaid(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Parcel{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusUnpaid).
		Update("payment_status", models.PaymentStatusPaid)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
