package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sojib-web/zap-shift-server/internal/ledger"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database so every pooled connection sees the
	// same schema
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Parcel{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createParcel(t *testing.T, db *gorm.DB, trackingID string) *models.Parcel {
	t.Helper()
	parcel := &models.Parcel{
		TrackingID:     trackingID,
		CreatedBy:      "sender@example.com",
		Title:          "Documents",
		Type:           "document",
		SenderName:     "Sender",
		ReceiverName:   "Receiver",
		Cost:           1500,
		DeliveryStatus: string(models.DeliveryStatusPending),
		PaymentStatus:  string(models.PaymentStatusUnpaid),
	}
	if err := db.Create(parcel).Error; err != nil {
		t.Fatalf("create parcel: %v", err)
	}
	return parcel
}

func TestParcelStoreFindByID(t *testing.T) {
	db := newTestDB(t)
	store := NewParcelStore(db)
	ctx := context.Background()

	created := createParcel(t, db, "ZAP-20260829-AAAAAA")

	found, err := store.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find parcel: %v", err)
	}
	if found.TrackingID != created.TrackingID {
		t.Fatalf("expected tracking id %q, got %q", created.TrackingID, found.TrackingID)
	}

	if _, err := store.FindByID(ctx, 9999); !errors.Is(err, ledger.ErrParcelNotFound) {
		t.Fatalf("expected ErrParcelNotFound, got %v", err)
	}
}

func TestConditionallyMarkPaidIsOnceOnly(t *testing.T) {
	db := newTestDB(t)
	store := NewParcelStore(db)
	ctx := context.Background()

	parcel := createParcel(t, db, "ZAP-20260829-BBBBBB")

	modified, err := store.ConditionallyMarkPaid(ctx, parcel.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !modified {
		t.Fatalf("expected first mark-paid to modify the row")
	}

	modified, err = store.ConditionallyMarkPaid(ctx, parcel.ID)
	if err != nil {
		t.Fatalf("second mark paid: %v", err)
	}
	if modified {
		t.Fatalf("second mark-paid modified an already-paid parcel")
	}

	var reloaded models.Parcel
	if err := db.First(&reloaded, parcel.ID).Error; err != nil {
		t.Fatalf("reload parcel: %v", err)
	}
	if reloaded.PaymentStatus != string(models.PaymentStatusPaid) {
		t.Fatalf("expected parcel paid, got %q", reloaded.PaymentStatus)
	}
}

func TestConditionallyMarkPaidUnknownParcel(t *testing.T) {
	db := newTestDB(t)
	store := NewParcelStore(db)

	modified, err := store.ConditionallyMarkPaid(context.Background(), 42)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if modified {
		t.Fatalf("mark-paid reported a modification for a missing parcel")
	}
}

func TestPaymentStoreInsertDuplicateTransactionID(t *testing.T) {
	db := newTestDB(t)
	store := NewPaymentStore(db)
	ctx := context.Background()

	parcel := createParcel(t, db, "ZAP-20260829-CCCCCC")

	first := &models.Payment{
		ParcelID:      parcel.ID,
		Email:         "sender@example.com",
		Amount:        1500,
		PaymentMethod: "card",
		TransactionID: "tx-dup",
		PaidAt:        time.Now().UTC(),
	}
	id, err := store.Insert(ctx, first)
	if err != nil {
		t.Fatalf("insert payment: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected non-zero payment id")
	}

	second := &models.Payment{
		ParcelID:      parcel.ID,
		Email:         "sender@example.com",
		Amount:        1500,
		PaymentMethod: "card",
		TransactionID: "tx-dup",
		PaidAt:        time.Now().UTC(),
	}
	if _, err := store.Insert(ctx, second); !errors.Is(err, ledger.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestPaymentStoreFindByTransactionID(t *testing.T) {
	db := newTestDB(t)
	store := NewPaymentStore(db)
	ctx := context.Background()

	if _, err := store.FindByTransactionID(ctx, "missing"); !errors.Is(err, ledger.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}

	parcel := createParcel(t, db, "ZAP-20260829-DDDDDD")
	payment := &models.Payment{
		ParcelID:      parcel.ID,
		Email:         "sender@example.com",
		Amount:        900,
		PaymentMethod: "card",
		TransactionID: "tx-find",
		PaidAt:        time.Now().UTC(),
	}
	if _, err := store.Insert(ctx, payment); err != nil {
		t.Fatalf("insert payment: %v", err)
	}

	found, err := store.FindByTransactionID(ctx, "tx-find")
	if err != nil {
		t.Fatalf("find payment: %v", err)
	}
	if found.Amount != 900 || found.ParcelID != parcel.ID {
		t.Fatalf("unexpected payment: %+v", found)
	}
}

func TestListByEmailPagination(t *testing.T) {
	db := newTestDB(t)
	store := NewPaymentStore(db)
	ctx := context.Background()

	parcel := createParcel(t, db, "ZAP-20260829-EEEEEE")
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		payment := &models.Payment{
			ParcelID:      parcel.ID,
			Email:         "payer@example.com",
			Amount:        int64(100 + i),
			PaymentMethod: "card",
			TransactionID: fmt.Sprintf("tx-page-%02d", i),
			PaidAt:        base.Add(time.Duration(i) * time.Hour),
		}
		if _, err := store.Insert(ctx, payment); err != nil {
			t.Fatalf("insert payment %d: %v", i, err)
		}
	}

	items, total, err := store.ListByEmail(ctx, "payer@example.com", 10, 10)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected total 25, got %d", total)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].PaidAt.After(items[i-1].PaidAt) {
			t.Fatalf("payments not sorted by paid_at descending at index %d", i)
		}
	}
	// Page 2 of a descending sort starts at the 11th newest payment
	if items[0].TransactionID != "tx-page-14" {
		t.Fatalf("expected page to start at tx-page-14, got %s", items[0].TransactionID)
	}

	items, total, err = store.ListByEmail(ctx, "nobody@example.com", 0, 10)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("expected empty result, got total %d with %d items", total, len(items))
	}
}

func TestListByEmailEmptyFilterMatchesEverything(t *testing.T) {
	db := newTestDB(t)
	store := NewPaymentStore(db)
	ctx := context.Background()

	parcel := createParcel(t, db, "ZAP-20260829-FFFFFF")
	for i, email := range []string{"a@example.com", "b@example.com"} {
		payment := &models.Payment{
			ParcelID:      parcel.ID,
			Email:         email,
			Amount:        100,
			PaymentMethod: "card",
			TransactionID: fmt.Sprintf("tx-all-%d", i),
			PaidAt:        time.Now().UTC(),
		}
		if _, err := store.Insert(ctx, payment); err != nil {
			t.Fatalf("insert payment: %v", err)
		}
	}

	_, total, err := store.ListByEmail(ctx, "", 0, 10)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
}
