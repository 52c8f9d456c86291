package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
	"github.com/mamadbah2/herdbook/internal/service/ledger"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

const owner = "224600000001"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	store := memory.NewStore()
	api := NewAPIHandler(ledger.NewService(store, nil), reporting.NewService(store, nil), nil)
	engine := gin.New()
	api.Register(engine.Group("/api"))
	return engine
}

func call(t *testing.T, engine *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestAnimalSaleLifecycleOverHTTP(t *testing.T) {
	engine := newTestEngine(t)

	rec := call(t, engine, http.MethodPost, "/api/animals", owner, map[string]any{
		"type":           "cow",
		"breed":          "N'Dama",
		"purchase_price": "5000000",
		"purchase_date":  "2024-03-01",
	})
	expectStatus(t, rec, http.StatusCreated)
	var animal models.Animal
	decode(t, rec, &animal)
	if animal.ID == 0 || animal.Status != models.AnimalActive {
		t.Fatalf("unexpected animal %+v", animal)
	}

	rec = call(t, engine, http.MethodPost, "/api/sales", owner, map[string]any{
		"animal_id":  animal.ID,
		"sale_date":  "2024-06-11",
		"sale_price": 7000000,
		"buyer_name": "Mamadou",
	})
	expectStatus(t, rec, http.StatusCreated)
	var sale models.Sale
	decode(t, rec, &sale)
	if !sale.Profit.Equal(decimal.NewFromInt(2000000)) {
		t.Fatalf("expected profit 2000000, got %s", sale.Profit)
	}

	rec = call(t, engine, http.MethodGet, "/api/stats/finance", owner, nil)
	expectStatus(t, rec, http.StatusOK)
	var stats models.FinanceStats
	decode(t, rec, &stats)
	if !stats.Income.Equal(decimal.NewFromInt(7000000)) || !stats.Expense.Equal(decimal.NewFromInt(5000000)) || !stats.Profit.Equal(decimal.NewFromInt(2000000)) {
		t.Fatalf("unexpected stats %+v", stats)
	}

	rec = call(t, engine, http.MethodPost, "/api/sales", owner, map[string]any{
		"animal_id":  animal.ID,
		"sale_date":  "2024-06-12",
		"sale_price": 8000000,
	})
	expectStatus(t, rec, http.StatusConflict)

	rec = call(t, engine, http.MethodDelete, fmt.Sprintf("/api/animals/%d", animal.ID), owner, nil)
	expectStatus(t, rec, http.StatusConflict)

	rec = call(t, engine, http.MethodDelete, fmt.Sprintf("/api/sales/%d", sale.ID), owner, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = call(t, engine, http.MethodGet, fmt.Sprintf("/api/animals/%d", animal.ID), owner, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &animal)
	if animal.Status != models.AnimalActive {
		t.Fatalf("expected animal back to active, got %s", animal.Status)
	}

	rec = call(t, engine, http.MethodGet, "/api/finance", owner, nil)
	expectStatus(t, rec, http.StatusOK)
	var records []models.FinanceRecord
	decode(t, rec, &records)
	if len(records) != 1 || records[0].Category != models.CategoryAnimalPurchase {
		t.Fatalf("expected only the purchase entry, got %+v", records)
	}
}

func TestUserHeaderIsRequired(t *testing.T) {
	engine := newTestEngine(t)

	for _, user := range []string{"", "abc", "-4", "0"} {
		rec := call(t, engine, http.MethodGet, "/api/animals", user, nil)
		expectStatus(t, rec, http.StatusUnauthorized)
	}

	rec := call(t, engine, http.MethodPost, "/api/butchers", "", map[string]any{"name": "Alpha", "phone": "+224 620 00 00 00"})
	expectStatus(t, rec, http.StatusCreated)

	rec = call(t, engine, http.MethodGet, "/api/butchers?search=alp", "", nil)
	expectStatus(t, rec, http.StatusOK)
	var butchers []models.Butcher
	decode(t, rec, &butchers)
	if len(butchers) != 1 || butchers[0].Name != "Alpha" {
		t.Fatalf("unexpected butchers %+v", butchers)
	}
}

func TestUsersDoNotSeeEachOther(t *testing.T) {
	engine := newTestEngine(t)

	rec := call(t, engine, http.MethodPost, "/api/animals", owner, map[string]any{
		"type":           "goat",
		"purchase_price": 250000,
		"purchase_date":  "2024-06-08",
	})
	expectStatus(t, rec, http.StatusCreated)
	var animal models.Animal
	decode(t, rec, &animal)

	rec = call(t, engine, http.MethodGet, fmt.Sprintf("/api/animals/%d", animal.ID), "224600000002", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = call(t, engine, http.MethodGet, "/api/animals", "224600000002", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "[]" {
		t.Fatalf("expected empty list, got %s", rec.Body.String())
	}
}

func TestRequestErrors(t *testing.T) {
	engine := newTestEngine(t)

	cases := []struct {
		name      string
		method    string
		path      string
		body      any
		wantCode  int
		wantField string
	}{
		{name: "missing price", method: http.MethodPost, path: "/api/animals", body: map[string]any{"type": "cow", "purchase_date": "2024-03-01"}, wantCode: http.StatusBadRequest, wantField: "purchase_price"},
		{name: "malformed json", method: http.MethodPost, path: "/api/animals", body: "{", wantCode: http.StatusBadRequest},
		{name: "bad date", method: http.MethodPost, path: "/api/feed", body: `{"name":"hay","quantity":1,"unit_price":1,"feed_date":"June"}`, wantCode: http.StatusBadRequest},
		{name: "bad id", method: http.MethodGet, path: "/api/animals/abc", wantCode: http.StatusBadRequest, wantField: "id"},
		{name: "unknown animal", method: http.MethodGet, path: "/api/animals/999", wantCode: http.StatusNotFound},
		{name: "unknown status", method: http.MethodGet, path: "/api/animals?status=lost", wantCode: http.StatusBadRequest, wantField: "status"},
		{name: "unknown kind", method: http.MethodGet, path: "/api/finance?type=gift", wantCode: http.StatusBadRequest, wantField: "type"},
		{name: "bad from", method: http.MethodGet, path: "/api/finance?from=yesterday", wantCode: http.StatusBadRequest, wantField: "from"},
		{name: "bad limit", method: http.MethodGet, path: "/api/finance?limit=-1", wantCode: http.StatusBadRequest, wantField: "limit"},
		{name: "long trend", method: http.MethodGet, path: "/api/stats/monthly?months=120", wantCode: http.StatusBadRequest, wantField: "months"},
		{name: "derived category", method: http.MethodPost, path: "/api/finance", body: map[string]any{"type": "income", "amount": 10, "category": "animal_sale", "date": "2024-06-01"}, wantCode: http.StatusBadRequest, wantField: "category"},
		{name: "sale of missing animal", method: http.MethodPost, path: "/api/sales", body: map[string]any{"animal_id": 77, "sale_date": "2024-06-01", "sale_price": 10}, wantCode: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := call(t, engine, tc.method, tc.path, owner, tc.body)
			expectStatus(t, rec, tc.wantCode)
			if tc.wantField == "" {
				return
			}
			var body map[string]string
			decode(t, rec, &body)
			if body["field"] != tc.wantField {
				t.Fatalf("expected field %q, got %+v", tc.wantField, body)
			}
		})
	}
}

func TestManualEntryAndDashboard(t *testing.T) {
	engine := newTestEngine(t)

	rec := call(t, engine, http.MethodPost, "/api/finance", owner, map[string]any{
		"type":        "expense",
		"amount":      "120000.50",
		"category":    "transport",
		"description": "truck to Labé",
		"date":        "2024-06-10",
	})
	expectStatus(t, rec, http.StatusCreated)
	var entry models.FinanceRecord
	decode(t, rec, &entry)

	rec = call(t, engine, http.MethodGet, "/api/dashboard", owner, nil)
	expectStatus(t, rec, http.StatusOK)
	var dash models.Dashboard
	decode(t, rec, &dash)
	if !dash.Finance.Profit.Equal(decimal.RequireFromString("-120000.5")) {
		t.Fatalf("unexpected profit %s", dash.Finance.Profit)
	}
	if len(dash.MonthlyTrend) != 6 {
		t.Fatalf("expected 6 trend months, got %d", len(dash.MonthlyTrend))
	}

	rec = call(t, engine, http.MethodDelete, fmt.Sprintf("/api/finance/%d", entry.ID), owner, nil)
	expectStatus(t, rec, http.StatusNoContent)
}

func TestExportReturnsWorkbook(t *testing.T) {
	engine := newTestEngine(t)
	rec := call(t, engine, http.MethodPost, "/api/feed", owner, map[string]any{
		"name":       "bran",
		"quantity":   10,
		"unit_price": 1500,
		"feed_date":  "2024-06-10",
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = call(t, engine, http.MethodGet, "/api/export", owner, nil)
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Fatalf("unexpected content type %q", ct)
	}

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	amount, err := book.GetCellValue("Ledger", "E2")
	if err != nil {
		t.Fatalf("read amount: %v", err)
	}
	if amount != "15000" && amount != "15000.00" {
		t.Fatalf("unexpected amount cell %q", amount)
	}
}
