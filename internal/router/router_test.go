package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/internal/repositories"

	"github.com/gin-gonic/gin"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestEngineWith(t, nil, 1<<20)
}

// newTestEngineWith builds the API over a temp catalog. A nil ledger uses file storage in the same dir.
func newTestEngineWith(t *testing.T, ledger repositories.LedgerRepository, maxUpload int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	if ledger == nil {
		ledger = repositories.NewFileLedgerRepository(dir)
	}
	engine := gin.New()
	err := Setup(engine, Dependencies{
		CatalogRepo:    repositories.NewFileCatalogRepository(filepath.Join(dir, "products.csv"), filepath.Join(dir, "backups")),
		LedgerRepo:     ledger,
		MaxUploadBytes: maxUpload,
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return engine
}

// unwritableLedgerRepo starts empty and fails every save.
type unwritableLedgerRepo struct{}

func (unwritableLedgerRepo) Load() (*models.LedgerState, error) { return models.NewLedgerState(), nil }

func (unwritableLedgerRepo) Save(*models.LedgerState, ...repositories.LedgerDocument) error {
	return fmt.Errorf("%w: disk full", repositories.ErrPersistence)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func doUpload(t *testing.T, engine *gin.Engine, path string, fields map[string]string, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func expectSuccess(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true {
		t.Fatalf("expected success, body = %s", w.Body.String())
	}
	return body
}

func expectFailure(t *testing.T, w *httptest.ResponseRecorder, status int) map[string]interface{} {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, status, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != false || body["message"] == "" {
		t.Fatalf("expected {success:false, message}, body = %s", w.Body.String())
	}
	return body
}

func TestProductEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"A","package_size":"6/4LB"}`))
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"B"}`))
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"C","position":1}`))
	expectFailure(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"A"}`), http.StatusConflict)

	w := doJSON(t, engine, http.MethodGet, "/api/products", "")
	var products []struct {
		ProductNumber string `json:"product_number"`
		Group         string `json:"group"`
		CaseCount     bool   `json:"case_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(products) != 3 || products[0].ProductNumber != "C" || products[0].Group != "OTHER" {
		t.Fatalf("products = %+v", products)
	}

	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/update", `{"product_number":"A","brand":"Acme"}`))
	expectFailure(t, doJSON(t, engine, http.MethodPost, "/api/products/update", `{"product_number":"Z","brand":"Acme"}`), http.StatusNotFound)
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/update-case-count", `{"product_number":"A","case_count":true}`))

	w = doJSON(t, engine, http.MethodGet, "/api/products/A", "")
	got := decode(t, w)
	if got["brand"] != "Acme" || got["case_count"] != true {
		t.Fatalf("product A = %v", got)
	}

	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/reorder", `{"product_numbers":["B"]}`))
	expectFailure(t, doJSON(t, engine, http.MethodPost, "/api/products/reorder", `{"product_numbers":["B","B"]}`), http.StatusConflict)
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/delete", `{"product_number":"C"}`))
	expectFailure(t, doJSON(t, engine, http.MethodPost, "/api/products/delete", `{"product_number":"C"}`), http.StatusNotFound)

	w = doJSON(t, engine, http.MethodGet, "/api/products/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	want := "Product Number,Product Description,Product Brand,Product Package Size,Group Name,Case Count Type\n" +
		"B,,,,OTHER,No\n" +
		"A,,Acme,6/4LB,OTHER,Yes\n"
	if w.Body.String() != want {
		t.Fatalf("export = %q, want %q", w.Body.String(), want)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/products/backups", "")
	var backups []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &backups); err != nil || len(backups) == 0 {
		t.Fatalf("backups = %s (err %v)", w.Body.String(), err)
	}
}

func TestInputErrorsUseSuccessFalseWith200(t *testing.T) {
	engine := newTestEngine(t)

	body := expectFailure(t, doUpload(t, engine, "/api/inventory/upload", map[string]string{"date": "2025-01-01"}, "count.csv", "SKU,Qty\nA,1\n"), http.StatusOK)
	if errObj, _ := body["error"].(map[string]interface{}); errObj["code"] != "VALIDATION_FAILED" {
		t.Fatalf("error = %v", body["error"])
	}
	expectFailure(t, doUpload(t, engine, "/api/inventory/upload", map[string]string{"location": "L", "date": "2025-01-01"}, "count.txt", "x"), http.StatusOK)
	expectFailure(t, doUpload(t, engine, "/api/inventory/upload", map[string]string{"location": "L", "date": "2025-01-01"}, "count.csv", "Name,Weight\nA,1\n"), http.StatusOK)
	expectFailure(t, doUpload(t, engine, "/api/orders/upload-invoice", map[string]string{"location": "L", "date": "2025-01-01"}, "", ""), http.StatusOK)
	expectFailure(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"description":"no number"}`), http.StatusOK)
	expectFailure(t, doJSON(t, engine, http.MethodGet, "/api/reports/product-activity?start_date=2025-02-01&end_date=2025-01-01", ""), http.StatusOK)
}

func TestInvoiceImportAndReversal(t *testing.T) {
	engine := newTestEngine(t)
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"12345","package_size":"6/4LB"}`))

	invoice := "ProductNumber,QtyShip,PricingUnit,PackingSize,ProductDescription,ProductLabel\n" +
		"12345,5,CS,6/4LB,Flour,Mill\n" +
		"99999,2,EA,,Olive Oil,Acme\n"
	body := expectSuccess(t, doUpload(t, engine, "/api/orders/upload-invoice",
		map[string]string{"location": "Kingsville", "date": "2025-01-10"}, "sysco.csv", invoice))
	importID, _ := body["import_id"].(string)
	if !strings.HasPrefix(importID, "INV-") {
		t.Fatalf("import_id = %v", body["import_id"])
	}
	if body["matched_count"] != float64(1) {
		t.Fatalf("matched_count = %v", body["matched_count"])
	}
	if created, _ := body["new_products_created"].([]interface{}); len(created) != 1 || created[0] != "99999" {
		t.Fatalf("new_products_created = %v", body["new_products_created"])
	}

	deliveries := decode(t, doJSON(t, engine, http.MethodGet, "/api/deliveries/Kingsville/2025-01-10", ""))
	d, _ := deliveries["deliveries"].(map[string]interface{})
	if d["12345"] != float64(30) || d["99999"] != float64(2) {
		t.Fatalf("deliveries = %v", d)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/invoices/import-log", "")
	var log []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &log); err != nil || len(log) != 1 {
		t.Fatalf("import log = %s", w.Body.String())
	}

	expectSuccess(t, doJSON(t, engine, http.MethodDelete, "/api/invoices/import/"+importID, ""))
	expectFailure(t, doJSON(t, engine, http.MethodDelete, "/api/invoices/import/"+importID, ""), http.StatusNotFound)

	deliveries = decode(t, doJSON(t, engine, http.MethodGet, "/api/deliveries/Kingsville/2025-01-10", ""))
	if d, _ := deliveries["deliveries"].(map[string]interface{}); len(d) != 0 {
		t.Fatalf("deliveries after reversal = %v", d)
	}
	product := decode(t, doJSON(t, engine, http.MethodGet, "/api/products/99999", ""))
	if product["group"] != "Unassigned" {
		t.Fatalf("created product = %v", product)
	}
}

func TestCountUploadExportAndDelete(t *testing.T) {
	engine := newTestEngine(t)
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"B","description":"Beans"}`))
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"A","description":"Apples"}`))

	sheet := "Product #,Qty\nA,2\nB,N/A\nA,3\nC,-1\n,4\n"
	body := expectSuccess(t, doUpload(t, engine, "/api/inventory/upload",
		map[string]string{"location": "Alice", "date": "2025-02-01"}, "count.csv", sheet))
	if body["products"] != float64(2) {
		t.Fatalf("products = %v", body["products"])
	}

	count := decode(t, doJSON(t, engine, http.MethodGet, "/api/inventory/Alice/2025-02-01", ""))
	inv, _ := count["inventory"].(map[string]interface{})
	if inv["A"] != float64(5) || inv["B"] != float64(0) || len(inv) != 2 {
		t.Fatalf("inventory = %v", inv)
	}

	w := doJSON(t, engine, http.MethodGet, "/api/inventory/export/Alice/2025-02-01", "")
	want := "Product Number,Product Description,Product Brand,Product Package Size,Group Name,Quantity\n" +
		"B,Beans,,,OTHER,0\n" +
		"A,Apples,,,OTHER,5\n"
	if w.Body.String() != want {
		t.Fatalf("export = %q, want %q", w.Body.String(), want)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "inventory_Alice_2025-02-01.csv") {
		t.Fatalf("content-disposition = %q", cd)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/inventory/export/Alice/2025-02-01?format=xlsx", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "spreadsheetml") || w.Body.Len() == 0 {
		t.Fatalf("xlsx export: status %d type %q", w.Code, w.Header().Get("Content-Type"))
	}

	locations := doJSON(t, engine, http.MethodGet, "/api/locations", "")
	if !strings.Contains(locations.Body.String(), `"location":"Alice"`) {
		t.Fatalf("locations = %s", locations.Body.String())
	}

	expectSuccess(t, doJSON(t, engine, http.MethodDelete, "/api/inventory/Alice/2025-02-01", ""))
	expectFailure(t, doJSON(t, engine, http.MethodDelete, "/api/inventory/Alice/2025-02-01", ""), http.StatusNotFound)
}

func TestOfficialOrderEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	expectSuccess(t, doUpload(t, engine, "/api/orders/upload",
		map[string]string{"location": "Kingsville", "date": "2025-04-07"}, "orders.csv", "Item Number,Order Qty\nA,10\nB,3\n"))
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/inventory/save",
		`{"location":"Kingsville","date":"2025-04-06","inventory":{"A":4,"B":5}}`))

	estimate := decode(t, doJSON(t, engine, http.MethodGet, "/api/orders/Kingsville/2025-04-07", ""))
	if o, _ := estimate["orders"].(map[string]interface{}); o["A"] != float64(10) {
		t.Fatalf("order estimate = %v", estimate)
	}

	body := expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/orders/calculate",
		`{"location":"Kingsville","order_date":"2025-04-07","inventory_date":"2025-04-06"}`))
	order, _ := body["order"].(map[string]interface{})
	items, _ := order["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("items = %v", items)
	}
	line, _ := items[0].(map[string]interface{})
	if line["product_number"] != "A" || line["official_quantity"] != float64(6) {
		t.Fatalf("line = %v", line)
	}

	expectFailure(t, doJSON(t, engine, http.MethodPost, "/api/orders/calculate",
		`{"location":"Kingsville","order_date":"2025-04-08","inventory_date":"2025-04-06"}`), http.StatusNotFound)
}

func TestProductActivityEndpoint(t *testing.T) {
	engine := newTestEngine(t)
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/products/add", `{"product_number":"X","package_size":"12/1EA"}`))
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/inventory/save", `{"location":"Kingsville","date":"2025-03-01","inventory":{"X":24}}`))
	expectSuccess(t, doJSON(t, engine, http.MethodPost, "/api/inventory/save", `{"location":"Kingsville","date":"2025-03-08","inventory":{"X":6}}`))
	expectSuccess(t, doUpload(t, engine, "/api/orders/upload-invoice",
		map[string]string{"location": "Kingsville", "delivery_date": "2025-03-04"}, "inv.csv", "ProductNumber,QtyShip\nX,12\n"))

	w := doJSON(t, engine, http.MethodGet, "/api/reports/product-activity?start_date=2025-03-01&end_date=2025-03-08&location=Kingsville", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var report struct {
		Products []struct {
			ProductNumber string  `json:"product_number"`
			Usage         float64 `json:"usage"`
			CasesRequired float64 `json:"cases_required"`
		} `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Products) != 1 || report.Products[0].Usage != 30 || report.Products[0].CasesRequired != 2.5 {
		t.Fatalf("report = %+v", report)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/reports/product-activity/export?start_date=2025-03-01&end_date=2025-03-08", "")
	if !strings.Contains(w.Body.String(), "X,,,12/1EA,OTHER,No,24,12,6,30,2.5") {
		t.Fatalf("export = %q", w.Body.String())
	}
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || decode(t, w)["status"] != "ok" {
		t.Fatalf("healthz = %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, engine, http.MethodGet, "/ping", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ping = %d", w.Code)
	}
	expectFailure(t, doJSON(t, engine, http.MethodGet, "/api/nope", ""), http.StatusNotFound)
}

func TestInvoiceUploadUnsavedKeepsImportID(t *testing.T) {
	engine := newTestEngineWith(t, unwritableLedgerRepo{}, 1<<20)
	fields := map[string]string{"location": "K", "date": "2025-01-10"}

	body := expectFailure(t, doUpload(t, engine, "/api/orders/upload-invoice", fields, "inv.csv", "ProductNumber,QtyShip\nA,5\n"),
		http.StatusInternalServerError)
	importID, _ := body["import_id"].(string)
	if !strings.HasPrefix(importID, "INV-") {
		t.Fatalf("import_id missing from failed save: %v", body)
	}
	if body["matched_count"] != float64(0) {
		t.Fatalf("matched_count = %v", body["matched_count"])
	}
	if created, _ := body["new_products_created"].([]interface{}); len(created) != 1 || created[0] != "A" {
		t.Fatalf("new_products_created = %v", body["new_products_created"])
	}
	msg, _ := body["message"].(string)
	if strings.Contains(strings.ToLower(msg), "retry") || !strings.Contains(msg, "Do not upload it again") || !strings.Contains(msg, importID) {
		t.Fatalf("message = %q", msg)
	}
	if errObj, _ := body["error"].(map[string]interface{}); errObj["code"] != "PERSISTENCE_FAILED" {
		t.Fatalf("error = %v", body["error"])
	}

	deliveries := decode(t, doJSON(t, engine, http.MethodGet, "/api/deliveries/K/2025-01-10", ""))
	if d, _ := deliveries["deliveries"].(map[string]interface{}); d["A"] != float64(5) {
		t.Fatalf("deliveries = %v", d)
	}

	// count saves are replace-only, so the generic wording applies
	body = expectFailure(t, doJSON(t, engine, http.MethodPost, "/api/inventory/save",
		`{"location":"K","date":"2025-01-10","inventory":{"A":1}}`), http.StatusInternalServerError)
	if msg, _ := body["message"].(string); !strings.Contains(msg, "applied but could not be saved") {
		t.Fatalf("message = %q", msg)
	}
}

func TestOversizedUploadReportsLimit(t *testing.T) {
	engine := newTestEngineWith(t, nil, 256)
	sheet := "SKU,Qty\n" + strings.Repeat("A,1\n", 200)

	body := expectFailure(t, doUpload(t, engine, "/api/inventory/upload",
		map[string]string{"location": "L", "date": "2025-01-01"}, "count.csv", sheet), http.StatusOK)
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "larger than") || strings.Contains(msg, "no file uploaded") || strings.Contains(msg, "required") {
		t.Fatalf("message = %q", msg)
	}

	expectFailure(t, doUpload(t, engine, "/api/products/upload", nil, "products.csv", sheet), http.StatusOK)
}
