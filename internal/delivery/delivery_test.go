package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/SparshM8/Farm-Technology/internal/clients"
	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/middleware"
	"github.com/SparshM8/Farm-Technology/internal/pricing"
	"github.com/SparshM8/Farm-Technology/internal/ratelimit"
	"github.com/SparshM8/Farm-Technology/internal/realtime"
	"github.com/SparshM8/Farm-Technology/internal/repository"
	"github.com/SparshM8/Farm-Technology/internal/usecase"
	"github.com/SparshM8/Farm-Technology/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "PASSCODE"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *Router
	hub      *realtime.Hub
	events   *realtime.Subscription
	database *db.Database
	manifest string
}

type serverOptions struct {
	checkoutLimit int
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	if opts.checkoutLimit == 0 {
		opts.checkoutLimit = 100
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	database, err := db.OpenSQLite(filepath.Join(dir, "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.Migrate(context.Background(), database, nil))

	hub := realtime.NewHub(64, logger)
	t.Cleanup(hub.Close)
	events := hub.Subscribe()

	productRepo := repository.NewProductRepository(database, logger)
	orderRepo := repository.NewOrderRepository(database, logger)
	contactRepo := repository.NewContactRepository(database, logger)
	newsRepo := repository.NewNewsRepository(database, logger)
	mailer := clients.NewNoopMailer(logger)

	pricingOpts := pricing.Options{CurrencySymbol: "₹"}
	manifest := filepath.Join(dir, "products.json")

	auth, err := usecase.NewAdminAuthUseCase("", testPassword, logger)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{APIPrefix: "/api", SessionSecret: "test-secret"}, logger)
	router.Register(
		NewCheckoutHandler(
			usecase.NewCheckoutUseCase(productRepo, orderRepo, hub, mailer, pricingOpts, logger),
			middleware.RateLimit(ratelimit.NewMemory(opts.checkoutLimit, time.Hour), "checkout", logger),
			logger,
		),
		NewOrderHandler(usecase.NewOrderUseCase(orderRepo, hub, mailer, logger), logger),
		NewProductHandler(usecase.NewProductUseCase(productRepo, hub, logger), logger),
		NewAdminHandler(
			auth,
			usecase.NewImportUseCase(productRepo, hub, usecase.ImportConfig{
				ManifestPath:   manifest,
				USDRate:        decimal.NewFromInt(83),
				CurrencySymbol: "₹",
			}, logger),
			middleware.RateLimit(ratelimit.NewMemory(100, time.Hour), "login", logger),
			logger,
		),
		NewContactHandler(usecase.NewContactUseCase(contactRepo, hub, logger), logger),
		NewNewsHandler(usecase.NewNewsUseCase(newsRepo, hub, logger), logger),
	)
	NewHealthHandler(database, logger).RegisterRoutes(router.Engine)

	return &testServer{router: router, hub: hub, events: events, database: database, manifest: manifest}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	s.router.Engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookie := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	return cookie
}

// drain returns the names of every event published so far.
func (s *testServer) drain() []string {
	var names []string
	for {
		select {
		case frame := <-s.events.C:
			var ev struct {
				Event string `json:"event"`
			}
			_ = json.Unmarshal(frame, &ev)
			names = append(names, ev.Event)
		default:
			return names
		}
	}
}

func (s *testServer) createProduct(t *testing.T, cookie string, title, price string) domain.Product {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/products", gin.H{"title": title, "image": "/img/x.jpg", "price": price}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Status string         `json:"status"`
		Item   domain.Product `json:"item"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Item
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCheckoutPricesFromCatalog(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)
	product := s.createProduct(t, cookie, "Organic Wheat Seeds", "₹150")
	s.drain()

	// client-supplied price and title are ignored
	w := s.do(t, http.MethodPost, "/api/checkout", gin.H{
		"customerName":    "Asha",
		"customerAddress": "Village Road 4",
		"customerPhone":   "9876543210",
		"items":           []gin.H{{"id": product.ID, "qty": 3, "price": 1, "title": "Free stuff"}},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		Status  string `json:"status"`
		OrderID int64  `json:"orderId"`
	}](t, w)
	assert.Equal(t, "ok", resp.Status)
	require.Positive(t, resp.OrderID)
	assert.Equal(t, []string{domain.EventOrdersNew}, s.drain())

	w = s.do(t, http.MethodGet, "/api/orders/"+itoa(resp.OrderID), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	order := decode[domain.Order](t, w)
	assert.Equal(t, "₹450.00", order.Total)
	assert.True(t, order.TotalValue.Equal(decimal.NewFromInt(450)))
	assert.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Organic Wheat Seeds", order.Items[0].Title)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(150)))
}

func TestCheckoutAcceptsStringIDs(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)
	product := s.createProduct(t, cookie, "Organic Wheat Seeds", "₹150")

	// the storefront cart stores ids as strings
	w := s.do(t, http.MethodPost, "/api/checkout", gin.H{
		"customerName":    "Asha",
		"customerAddress": "Village Road 4",
		"customerPhone":   "9876543210",
		"items": []gin.H{
			{"id": itoa(product.ID), "qty": 3, "title": "x", "price": "₹1", "unit_price": 1},
			{"id": "garbage", "qty": 1},
		},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode[struct {
		OrderID int64 `json:"orderId"`
	}](t, w).OrderID

	order := decode[domain.Order](t, s.do(t, http.MethodGet, "/api/orders/"+itoa(id), nil, cookie))
	assert.Equal(t, "₹450.00", order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, product.ID, order.Items[0].ProductID)
	assert.Equal(t, "Organic Wheat Seeds", order.Items[0].Title)
	assert.True(t, order.Items[1].UnitPrice.IsZero(), "unparseable id prices as unknown")
}

func TestCheckoutQuantityFloorAndUnknownProduct(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)
	product := s.createProduct(t, cookie, "Neem Oil", "₹99.50")

	w := s.do(t, http.MethodPost, "/api/checkout", gin.H{
		"customerName":    "Ravi",
		"customerAddress": "Plot 9",
		"customerPhone":   "12345",
		"items":           []gin.H{{"id": product.ID, "qty": 0}, {"id": 9999, "qty": 2}},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode[struct {
		OrderID int64 `json:"orderId"`
	}](t, w).OrderID

	order := decode[domain.Order](t, s.do(t, http.MethodGet, "/api/orders/"+itoa(id), nil, cookie))
	assert.Equal(t, "₹99.50", order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.True(t, order.Items[1].UnitPrice.IsZero())
}

func TestCheckoutEmptyItemsRejected(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)
	s.drain()

	w := s.do(t, http.MethodPost, "/api/checkout", gin.H{
		"customerName":    "Asha",
		"customerAddress": "Village Road 4",
		"customerPhone":   "9876543210",
		"items":           []gin.H{},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Missing required order information."}`, w.Body.String())
	assert.Empty(t, s.drain())

	w = s.do(t, http.MethodGet, "/api/orders", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCheckoutRateLimited(t *testing.T) {
	s := newTestServer(t, serverOptions{checkoutLimit: 1})

	body := gin.H{"customerName": "A", "customerAddress": "B", "customerPhone": "C", "items": []gin.H{{"id": 1, "qty": 1}}}
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/checkout", body, "").Code)
	s.drain()

	w := s.do(t, http.MethodPost, "/api/checkout", body, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, s.drain(), "a limited request has no side effects")
}

func TestOrderStatusUpdate(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)
	product := s.createProduct(t, cookie, "Urea 45kg", "₹266")

	w := s.do(t, http.MethodPost, "/api/checkout", gin.H{
		"customerName": "Asha", "customerAddress": "Road", "customerPhone": "1",
		"items": []gin.H{{"id": product.ID, "qty": 1}},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[struct {
		OrderID int64 `json:"orderId"`
	}](t, w).OrderID
	s.drain()

	w = s.do(t, http.MethodPut, "/api/orders/"+itoa(id)+"/status", gin.H{"status": "shipped"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		Status string       `json:"status"`
		Order  domain.Order `json:"order"`
	}](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, domain.StatusShipped, resp.Order.Status)
	assert.Equal(t, []string{domain.EventOrdersUpdate}, s.drain())

	order := decode[domain.Order](t, s.do(t, http.MethodGet, "/api/orders/"+itoa(id), nil, cookie))
	assert.Equal(t, domain.StatusShipped, order.Status)

	t.Run("invalid status leaves order unchanged", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/orders/"+itoa(id)+"/status", gin.H{"status": "teleported"}, cookie)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"status":"error","message":"Invalid status"}`, w.Body.String())
		assert.Empty(t, s.drain())

		order := decode[domain.Order](t, s.do(t, http.MethodGet, "/api/orders/"+itoa(id), nil, cookie))
		assert.Equal(t, domain.StatusShipped, order.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/orders/424242/status", gin.H{"status": "packed"}, cookie)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/orders"},
		{http.MethodGet, "/api/orders/1"},
		{http.MethodPut, "/api/orders/1/status"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
		{http.MethodGet, "/api/contacts"},
		{http.MethodPost, "/api/news"},
		{http.MethodPost, "/api/admin/import-products"},
	} {
		w := s.do(t, tc.method, tc.path, gin.H{}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}

	w := s.do(t, http.MethodGet, "/api/admin/status", nil, "")
	assert.JSONEq(t, `{"isAdmin":false}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/admin/login", gin.H{"password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))

	cookie := s.login(t)
	w = s.do(t, http.MethodGet, "/api/admin/status", nil, cookie)
	assert.JSONEq(t, `{"isAdmin":true}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/admin/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := w.Header().Get("Set-Cookie")
	w = s.do(t, http.MethodGet, "/api/admin/status", nil, cleared)
	assert.JSONEq(t, `{"isAdmin":false}`, w.Body.String())
}

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)
	product := s.createProduct(t, cookie, "Vermicompost 5kg", "₹1,299")
	assert.True(t, product.PriceValue.Valid)
	assert.True(t, product.PriceValue.Decimal.Equal(decimal.NewFromInt(1299)))
	assert.Equal(t, []string{domain.EventProductsUpdate}, s.drain())

	w := s.do(t, http.MethodPut, "/api/products/"+itoa(product.ID), gin.H{"price": "₹1,199"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[struct {
		Item domain.Product `json:"item"`
	}](t, w).Item
	assert.Equal(t, "Vermicompost 5kg", updated.Title)
	assert.True(t, updated.PriceValue.Decimal.Equal(decimal.NewFromInt(1199)))

	w = s.do(t, http.MethodGet, "/api/products/"+itoa(product.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "₹1,199", decode[domain.Product](t, w).Price)

	w = s.do(t, http.MethodPost, "/api/products", gin.H{"price": "₹10"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Title value missing"}`, w.Body.String())

	w = s.do(t, http.MethodDelete, "/api/products/"+itoa(product.ID), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/products/"+itoa(product.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Product not found"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/products", nil, "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestImportProductsIsIdempotent(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)

	w := s.do(t, http.MethodPost, "/api/admin/import-products", nil, cookie)
	assert.Equal(t, http.StatusNotFound, w.Code, "missing manifest")

	manifest := `[
		{"id": 1, "title": "Organic Wheat Seeds", "image": "/img/wheat.jpg", "price": "₹150", "description": "High-yield"},
		{"title": "Drip Kit", "image": "/img/drip.jpg", "price": "$25.00", "description": "Imported"}
	]`
	require.NoError(t, os.WriteFile(s.manifest, []byte(manifest), 0o644))

	w = s.do(t, http.MethodPost, "/api/admin/import-products", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"ok","added":2,"updated":0}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/admin/import-products", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","added":0,"updated":0}`, w.Body.String())

	products := decode[[]domain.Product](t, s.do(t, http.MethodGet, "/api/products", nil, ""))
	require.Len(t, products, 2)
	byTitle := map[string]domain.Product{}
	for _, p := range products {
		byTitle[p.Title] = p
	}
	assert.Equal(t, "₹2075", byTitle["Drip Kit"].Price)
}

func TestContactAndNews(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	cookie := s.login(t)
	s.drain()

	w := s.do(t, http.MethodPost, "/api/contact", gin.H{"name": "Asha", "email": "asha@example.com", "message": "Do you ship to Nashik?"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{domain.EventContactReceived}, s.drain())

	w = s.do(t, http.MethodPost, "/api/contact", gin.H{"name": "Asha"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"All fields are required."}`, w.Body.String())

	contacts := decode[[]domain.ContactMessage](t, s.do(t, http.MethodGet, "/api/contacts", nil, cookie))
	require.Len(t, contacts, 1)
	assert.Equal(t, "asha@example.com", contacts[0].Email)

	w = s.do(t, http.MethodPost, "/api/news", gin.H{"title": "Kisan Drone Scheme", "excerpt": "50% subsidy", "link": "https://example.com/drones"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{domain.EventNewsUpdate}, s.drain())

	w = s.do(t, http.MethodPost, "/api/news", gin.H{"title": "Bad link", "link": "not a url"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	news := decode[[]domain.NewsItem](t, s.do(t, http.MethodGet, "/api/news", nil, ""))
	require.Len(t, news, 1)
	assert.Equal(t, "Kisan Drone Scheme", news[0].Title)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	w := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	require.NoError(t, s.database.Close())
	w = s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
