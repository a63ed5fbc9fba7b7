package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sojib-web/zap-shift-server/internal/ledger"
	"github.com/sojib-web/zap-shift-server/internal/models"
	"github.com/sojib-web/zap-shift-server/internal/stores"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Parcel{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeAuth stands in for the JWT middleware and injects the claims the
// handlers read from the context.
func fakeAuth(userID uint, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("email", email)
		c.Set("role", role)
		c.Next()
	}
}

func newPaymentsRouter(db *gorm.DB, userID uint, email, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	paymentLedger := ledger.New(stores.NewParcelStore(db), stores.NewPaymentStore(db))

	r := gin.New()
	api := r.Group("/api", fakeAuth(userID, email, role))
	api.POST("/payments", RecordPayment(db, paymentLedger, nil))
	api.GET("/payments", ListPayments(paymentLedger))
	return r
}

func seedParcel(t *testing.T, db *gorm.DB, owner string) *models.Parcel {
	t.Helper()
	parcel := &models.Parcel{
		TrackingID:     fmt.Sprintf("ZAP-20260829-%d", time.Now().UnixNano()%1000000),
		CreatedBy:      owner,
		Title:          "Books",
		Type:           "non-document",
		SenderName:     "Sender",
		ReceiverName:   "Receiver",
		Cost:           2000,
		DeliveryStatus: string(models.DeliveryStatusPending),
		PaymentStatus:  string(models.PaymentStatusUnpaid),
	}
	if err := db.Create(parcel).Error; err != nil {
		t.Fatalf("seed parcel: %v", err)
	}
	return parcel
}

func postPayment(t *testing.T, r *gin.Engine, body gin.H) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/payments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordPaymentEndpoint(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "payer@example.com", string(models.UserRoleUser))
	parcel := seedParcel(t, db, "payer@example.com")

	body := gin.H{
		"parcelId":      parcel.ID,
		"email":         "payer@example.com",
		"amount":        2000,
		"paymentMethod": "card",
		"transactionId": "tx-http-1",
	}

	w := postPayment(t, r, body)
	if w.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		InsertedID uint `json:"insertedId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.InsertedID == 0 {
		t.Fatalf("expected non-zero insertedId")
	}

	var reloaded models.Parcel
	if err := db.First(&reloaded, parcel.ID).Error; err != nil {
		t.Fatalf("reload parcel: %v", err)
	}
	if reloaded.PaymentStatus != string(models.PaymentStatusPaid) {
		t.Fatalf("expected parcel paid, got %q", reloaded.PaymentStatus)
	}

	// Replaying the same transaction id must not change anything
	w = postPayment(t, r, body)
	if w.Code != 409 {
		t.Fatalf("expected 409 on duplicate transaction, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&models.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 payment record, got %d", count)
	}

	// A fresh transaction against the now-paid parcel is also a conflict
	body["transactionId"] = "tx-http-2"
	w = postPayment(t, r, body)
	if w.Code != 409 {
		t.Fatalf("expected 409 on already-paid parcel, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecordPaymentEndpointParcelNotFound(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "payer@example.com", string(models.UserRoleUser))

	w := postPayment(t, r, gin.H{
		"parcelId":      99999,
		"email":         "payer@example.com",
		"amount":        2000,
		"paymentMethod": "card",
		"transactionId": "tx-http-missing",
	})
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&models.Payment{}).Count(&count).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no payment records, got %d", count)
	}
}

func TestRecordPaymentEndpointForeignEmail(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "payer@example.com", string(models.UserRoleUser))
	parcel := seedParcel(t, db, "other@example.com")

	w := postPayment(t, r, gin.H{
		"parcelId":      parcel.ID,
		"email":         "other@example.com",
		"amount":        2000,
		"paymentMethod": "card",
		"transactionId": "tx-http-foreign",
	})
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRecordPaymentEndpointValidation(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "payer@example.com", string(models.UserRoleUser))

	w := postPayment(t, r, gin.H{
		"parcelId": 1,
		"email":    "payer@example.com",
		// amount and transactionId missing
		"paymentMethod": "card",
	})
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListPaymentsEndpoint(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "payer@example.com", string(models.UserRoleUser))
	parcel := seedParcel(t, db, "payer@example.com")

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		payment := &models.Payment{
			ParcelID:      parcel.ID,
			Email:         "payer@example.com",
			Amount:        int64(100 + i),
			PaymentMethod: "card",
			TransactionID: fmt.Sprintf("tx-list-%02d", i),
			PaidAt:        base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(payment).Error; err != nil {
			t.Fatalf("seed payment %d: %v", i, err)
		}
	}
	// A payment by someone else must never appear for this caller
	other := &models.Payment{
		ParcelID:      parcel.ID,
		Email:         "other@example.com",
		Amount:        999,
		PaymentMethod: "card",
		TransactionID: "tx-list-other",
		PaidAt:        base,
	}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("seed foreign payment: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments?page=2&limit=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data  []models.Payment `json:"data"`
		Total int64            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 12 {
		t.Fatalf("expected total 12, got %d", resp.Total)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(resp.Data))
	}
	// Newest first, so page 2 carries the two oldest payments
	if resp.Data[0].TransactionID != "tx-list-01" || resp.Data[1].TransactionID != "tx-list-00" {
		t.Fatalf("unexpected page contents: %s, %s",
			resp.Data[0].TransactionID, resp.Data[1].TransactionID)
	}
}

func TestListPaymentsEndpointForeignEmail(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "payer@example.com", string(models.UserRoleUser))

	req := httptest.NewRequest(http.MethodGet, "/api/payments?email=other@example.com", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListPaymentsEndpointEmpty(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "payer@example.com", string(models.UserRoleUser))

	req := httptest.NewRequest(http.MethodGet, "/api/payments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data  []models.Payment `json:"data"`
		Total int64            `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 0 {
		t.Fatalf("expected total 0, got %d", resp.Total)
	}
	if resp.Data == nil {
		t.Fatalf("expected empty array, got null")
	}
}

func TestListPaymentsEndpointAdminSeesAll(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newPaymentsRouter(db, 1, "admin@example.com", string(models.UserRoleAdmin))
	parcel := seedParcel(t, db, "payer@example.com")

	for i, email := range []string{"a@example.com", "b@example.com"} {
		payment := &models.Payment{
			ParcelID:      parcel.ID,
			Email:         email,
			Amount:        100,
			PaymentMethod: "card",
			TransactionID: fmt.Sprintf("tx-admin-%d", i),
			PaidAt:        time.Now().UTC(),
		}
		if err := db.Create(payment).Error; err != nil {
			t.Fatalf("seed payment: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/payments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("expected admin to see 2 payments, got %d", resp.Total)
	}
}
