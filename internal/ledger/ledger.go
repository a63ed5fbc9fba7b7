// Package ledger enforces the payment consistency rules: a transaction is
// recorded at most once and a parcel's payment state transitions at most
// once per successful payment.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sojib-web/zap-shift-server/internal/metrics"
	"github.com/sojib-web/zap-shift-server/internal/models"
)

var (
	// ErrInvalidInput is returned when a payment request fails local validation.
	ErrInvalidInput = errors.New("invalid payment input")
	// ErrDuplicateTransaction is returned when the transaction id has already
	// been recorded.
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	// ErrParcelNotFound is returned when the parcel id references nothing.
	ErrParcelNotFound = errors.New("parcel not found")
	// ErrParcelAlreadyPaid is returned when the parcel has already been paid.
	// Distinct from ErrParcelNotFound so callers can tell "bad id" from
	// "nothing to do".
	ErrParcelAlreadyPaid = errors.New("parcel already paid")
	// ErrPaymentNotFound is the store-level sentinel for a missing payment.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrDuplicateKey is the store-level sentinel for a uniqueness violation
	// on transaction_id.
	ErrDuplicateKey = errors.New("duplicate transaction id")
)

// PersistFailedError reports a payment insert that failed after the parcel
// was already marked paid. The parcel is left paid with no corresponding
// payment record and needs manual reconciliation, so this must never be
// collapsed into a generic failure.
type PersistFailedError struct {
	ParcelID      uint
	TransactionID string
	Err           error
}

func (e *PersistFailedError) Error() string {
	return fmt.Sprintf("payment persist failed after state change (parcel %d, transaction %s): %v",
		e.ParcelID, e.TransactionID, e.Err)
}

func (e *PersistFailedError) Unwrap() error {
	return e.Err
}

// ParcelStore holds parcel documents and supports a conditional mark-paid.
type ParcelStore interface {
	FindByID(ctx context.Context, id uint) (*models.Parcel, error)
	// ConditionallyMarkPaid atomically sets payment_status to paid only if
	// the parcel is currently unpaid. It reports whether a row was modified.
	ConditionallyMarkPaid(ctx context.Context, id uint) (bool, error)
}

// PaymentStore is the append-only record of completed payments.
type PaymentStore interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error)
	// Insert fails with ErrDuplicateKey if the transaction id is taken.
	Insert(ctx context.Context, payment *models.Payment) (uint, error)
	// ListByEmail returns payments sorted by paid_at descending plus the
	// total count matching the filter. An empty email matches everything.
	ListByEmail(ctx context.Context, email string, offset, limit int) ([]models.Payment, int64, error)
}

// PaymentLedger composes a ParcelStore and a PaymentStore and owns the
// no-duplicate-payment invariant across them.
type PaymentLedger struct {
	parcels  ParcelStore
	payments PaymentStore
	clock    func() time.Time
}

func New(parcels ParcelStore, payments PaymentStore) *PaymentLedger {
	return &PaymentLedger{
		parcels:  parcels,
		payments: payments,
		clock:    time.Now,
	}
}

// RecordPaymentInput carries an already-authenticated payment request.
type RecordPaymentInput struct {
	ParcelID      uint
	Email         string
	Amount        int64 // minor currency units
	PaymentMethod string
	TransactionID string
}

func (in RecordPaymentInput) validate() error {
	if in.ParcelID == 0 {
		return fmt.Errorf("%w: parcelId is required", ErrInvalidInput)
	}
	if in.Email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if in.PaymentMethod == "" {
		return fmt.Errorf("%w: paymentMethod is required", ErrInvalidInput)
	}
	if in.TransactionID == "" {
		return fmt.Errorf("%w: transactionId is required", ErrInvalidInput)
	}
	return nil
}

// RecordPayment records a completed payment against a parcel:
//
//  1. reject the transaction id if it has already been recorded
//  2. conditionally flip the parcel from unpaid to paid
//  3. append the payment record
//
// Exactly one parcel mutation and one payment insertion happen, in that
// order, never reversed. The duplicate pre-check is backed by a unique
// index on transaction_id in the payment store, so two concurrent calls
// with the same transaction id cannot both insert.
func (l *PaymentLedger) RecordPayment(ctx context.Context, in RecordPaymentInput) (uint, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	// Step 1: duplicate check. No mutation happens on a replayed id.
	if _, err := l.payments.FindByTransactionID(ctx, in.TransactionID); err == nil {
		metrics.DuplicateTransactionsTotal.Inc()
		return 0, ErrDuplicateTransaction
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return 0, fmt.Errorf("duplicate check: %w", err)
	}

	// Step 2: state transition, guarded so it can only happen once.
	parcel, err := l.parcels.FindByID(ctx, in.ParcelID)
	if err != nil {
		return 0, err
	}
	if parcel.PaymentStatus == string(models.PaymentStatusPaid) {
		return 0, ErrParcelAlreadyPaid
	}
	modified, err := l.parcels.ConditionallyMarkPaid(ctx, in.ParcelID)
	if err != nil {
		return 0, fmt.Errorf("mark paid: %w", err)
	}
	if !modified {
		// Lost a race against another payment for the same parcel.
		return 0, ErrParcelAlreadyPaid
	}

	// Step 3: append the record, only after step 2 reported success.
	payment := &models.Payment{
		ParcelID:      in.ParcelID,
		Email:         in.Email,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		TransactionID: in.TransactionID,
		PaidAt:        l.clock(),
	}
	id, err := l.payments.Insert(ctx, payment)
	if err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			// A concurrent call with the same transaction id won the insert.
			// The parcel is paid and a matching record exists, so state is
			// consistent and the caller just replayed a known transaction.
			metrics.DuplicateTransactionsTotal.Inc()
			return 0, ErrDuplicateTransaction
		}
		// The parcel is paid but no payment record exists. Log everything
		// needed to replay the insert manually.
		metrics.OrphanedPaymentsTotal.Inc()
		log.Printf("RECONCILE: payment insert failed after parcel %d marked paid (transaction %s): %v",
			in.ParcelID, in.TransactionID, err)
		return 0, &PersistFailedError{
			ParcelID:      in.ParcelID,
			TransactionID: in.TransactionID,
			Err:           err,
		}
	}

	metrics.PaymentsRecordedTotal.Inc()
	return id, nil
}

// ListQuery selects a page of payments. Page is 1-based.
type ListQuery struct {
	Email    string
	Page     int
	PageSize int
}

// ListPayments returns payments sorted by paid_at descending plus the total
// count for the filter regardless of page.
func (l *PaymentLedger) ListPayments(ctx context.Context, q ListQuery) ([]models.Payment, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}

	offset := (q.Page - 1) * q.PageSize
	return l.payments.ListByEmail(ctx, q.Email, offset, q.PageSize)
}
