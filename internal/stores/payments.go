package stores

import (
	"context"
	"errors"

	"github.com/sojib-web/zap-shift-server/internal/ledger"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"gorm.io/gorm"
)

// PaymentStore implements ledger.PaymentStore on top of gorm. The payments
// table carries a unique index on transaction_id, which is what makes the
// ledger's duplicate check race-free.
type PaymentStore struct {
	db *gorm.DB
}

func NewPaymentStore(db *gorm.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func (s *PaymentStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentStore) Insert(ctx context.Context, payment *models.Payment) (uint, error) {
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		// Requires gorm's TranslateError so the driver's unique-violation
		// error surfaces uniformly across postgres and sqlite.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ledger.ErrDuplicateKey
		}
		return 0, err
	}
	return payment.ID, nil
}

func (s *PaymentStore) ListByEmail(ctx context.Context, email string, offset, limit int) ([]models.Payment, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Payment{})
	if email != "" {
		query = query.Where("email = ?", email)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	if err := query.
		Order("paid_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}
