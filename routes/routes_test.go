package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-frontdesk/billing"
	"hotel-frontdesk/config"
	"hotel-frontdesk/middleware"
	"hotel-frontdesk/services"
	"hotel-frontdesk/session"
	"hotel-frontdesk/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// deskTime is a fixed Wednesday morning so pricing never depends on when
// the tests run.
var deskTime = time.Date(2025, time.March, 5, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	require.NoError(t, config.SeedDatabase(db))

	desk := services.NewFrontDesk(
		services.NewLocalBackend(db, utils.SMTPConfig{}),
		session.NewMemoryStore(),
		billing.NewCalculator(time.UTC),
		services.WithClock(func() time.Time { return deskTime }),
	)
	return &testServer{t: t, router: New(desk, Options{JWTSecret: secret})}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) decode(w *httptest.ResponseRecorder, out interface{}) envelope {
	s.t.Helper()
	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil && len(env.Data) > 0 {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
	return env
}

type roomBody struct {
	ID             uint     `json:"id"`
	RoomNumber     string   `json:"roomNumber"`
	Status         string   `json:"status"`
	AllowedActions []string `json:"allowedActions"`
	Events         []struct {
		Type    string `json:"type"`
		StaffID string `json:"staffId"`
	} `json:"events"`
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestStayLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, "")

	var room roomBody
	w := s.do(http.MethodGet, "/api/rooms/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &room)
	assert.Equal(t, "available", room.Status)
	assert.Equal(t, []string{"checkin", "maintenance"}, room.AllowedActions)

	w = s.do(http.MethodPost, "/api/rooms/1/checkin", map[string]interface{}{
		"guest":    map[string]string{"name": "Ann", "email": "ann@example.com"},
		"services": []map[string]interface{}{{"name": "Water", "unitPrice": 10000, "quantity": 2}},
		"staffId":  "s1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &room)
	assert.Equal(t, "active", room.Status)

	w = s.do(http.MethodPost, "/api/rooms/1/checkin", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", s.decode(w, nil).Code)

	var sess struct {
		Guest struct{ Name string } `json:"guest"`
	}
	w = s.do(http.MethodGet, "/api/rooms/1/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &sess)
	assert.Equal(t, "Ann", sess.Guest.Name)

	w = s.do(http.MethodPut, "/api/rooms/1/session", map[string]interface{}{"discount": 5000})
	require.Equal(t, http.StatusOK, w.Code)

	var sessions map[string]json.RawMessage
	w = s.do(http.MethodGet, "/api/sessions", nil)
	s.decode(w, &sessions)
	assert.Contains(t, sessions, "1")

	var quote struct {
		Tier  string `json:"tier"`
		Total int64  `json:"total"`
	}
	w = s.do(http.MethodGet, "/api/rooms/1/quote", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &quote)
	assert.Equal(t, "hourly", quote.Tier)
	assert.Equal(t, int64(50000+20000-5000), quote.Total)

	var result struct {
		Room    roomBody `json:"room"`
		Invoice struct {
			ID            uint   `json:"id"`
			InvoiceNumber string `json:"invoiceNumber"`
			CustomerName  string `json:"customerName"`
			TotalAmount   int64  `json:"totalAmount"`
		} `json:"invoice"`
		InvoiceSaveError string `json:"invoiceSaveError"`
	}
	w = s.do(http.MethodPost, "/api/rooms/1/checkout", map[string]interface{}{
		"invoice": map[string]interface{}{"notes": "thanks"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &result)
	assert.Equal(t, "dirty", result.Room.Status)
	assert.Empty(t, result.InvoiceSaveError)
	assert.Equal(t, "Ann", result.Invoice.CustomerName)
	assert.Equal(t, int64(65000), result.Invoice.TotalAmount)
	require.NotZero(t, result.Invoice.ID)

	w = s.do(http.MethodGet, "/api/rooms/1/session", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/rooms/1/clean", map[string]string{"note": "ok"})
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &room)
	assert.Equal(t, "available", room.Status)

	var page struct {
		Total        int64 `json:"total"`
		TotalPayment int64 `json:"totalPayment"`
		Records      []struct {
			RoomNumber string `json:"roomNumber"`
			Type       string `json:"type"`
		} `json:"records"`
	}
	w = s.do(http.MethodGet, "/api/history?hotelId=1&page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, int64(65000), page.TotalPayment)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "101", page.Records[0].RoomNumber)
	assert.Equal(t, "checkout", page.Records[0].Type)

	w = s.do(http.MethodGet, "/api/history/export?hotelId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "room-history.xlsx")
	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("History")
	require.NoError(t, err)
	assert.Equal(t, "101", rows[1][1])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/invoices/%d", result.Invoice.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, fmt.Sprintf("/api/invoices/%d/status", result.Invoice.ID), map[string]string{"status": "void"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/invoices/%d/email", result.Invoice.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransferAndMaintenanceOverHTTP(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodPost, "/api/rooms/1/checkin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/rooms/1/transfer", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var moved struct {
		Source roomBody `json:"source"`
		Target roomBody `json:"target"`
	}
	w = s.do(http.MethodPost, "/api/rooms/1/transfer", map[string]interface{}{"targetId": 3, "note": "upgrade"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &moved)
	assert.Equal(t, "dirty", moved.Source.Status)
	assert.Equal(t, "active", moved.Target.Status)

	w = s.do(http.MethodGet, "/api/rooms/3/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var room roomBody
	w = s.do(http.MethodPost, "/api/rooms/2/maintenance", map[string]string{"note": "paint"})
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &room)
	assert.Equal(t, "maintenance", room.Status)

	var available []roomBody
	w = s.do(http.MethodGet, "/api/hotels/1/rooms/available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &available)
	require.Len(t, available, 1)
	assert.Equal(t, "301", available[0].RoomNumber)

	w = s.do(http.MethodGet, "/api/rooms/3/quote", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/rooms/2/quote", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "no_active_stay", s.decode(w, nil).Code)
}

func TestNotFoundAndBadRequests(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do(http.MethodGet, "/api/rooms/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := s.decode(w, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Code)

	w = s.do(http.MethodGet, "/api/rooms/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/invoices/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/invoices", map[string]interface{}{"invoiceNumber": "12ab"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/invoices/1/status", map[string]string{"status": "refunded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var hotel struct {
		Name string `json:"name"`
	}
	w = s.do(http.MethodGet, "/api/hotels/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &hotel)
	assert.Equal(t, "Front Desk Demo Hotel", hotel.Name)
}

func TestManualInvoiceOverHTTP(t *testing.T) {
	s := newTestServer(t, "")

	var inv struct {
		ID            uint   `json:"id"`
		InvoiceNumber string `json:"invoiceNumber"`
		CustomerName  string `json:"customerName"`
		TotalAmount   int64  `json:"totalAmount"`
	}
	w := s.do(http.MethodPost, "/api/invoices", map[string]interface{}{
		"products": []map[string]interface{}{{"name": "Breakfast", "unitPrice": 50000, "quantity": 2}},
		"discount": 10000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.decode(w, &inv)
	assert.Len(t, inv.InvoiceNumber, 6)
	assert.Equal(t, "walk-in guest", inv.CustomerName)
	assert.Equal(t, int64(90000), inv.TotalAmount)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/invoices/%d", inv.ID), map[string]interface{}{
		"customerName": "Bob",
		"products":     []map[string]interface{}{{"name": "Breakfast", "unitPrice": 50000, "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	s.decode(w, &inv)
	assert.Equal(t, "Bob", inv.CustomerName)
	assert.Equal(t, int64(50000), inv.TotalAmount)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/invoices/%d/email", inv.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/invoices/%d", inv.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/invoices/%d", inv.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaffAuthOverHTTP(t *testing.T) {
	s := newTestServer(t, "secret")

	w := s.do(http.MethodGet, "/api/rooms/1", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	token, err := middleware.NewStaffToken("secret", "staff-7", "Lan", time.Hour)
	require.NoError(t, err)
	s.token = token

	var room roomBody
	w = s.do(http.MethodPost, "/api/rooms/1/checkin", map[string]string{"staffId": "spoofed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &room)
	require.Len(t, room.Events, 1)
	assert.Equal(t, "staff-7", room.Events[0].StaffID)
}
