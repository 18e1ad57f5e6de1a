package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"toolforge-rest-api/internal/cache"
	"toolforge-rest-api/internal/handler"
	"toolforge-rest-api/internal/middleware"
	"toolforge-rest-api/internal/model"
	"toolforge-rest-api/internal/repository"
	"toolforge-rest-api/internal/router"
	"toolforge-rest-api/internal/service"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "handler-test-secret"

// fakeIntents stands in for the payment provider.
type fakeIntents struct {
	secret string
	err    error
	price  float64
}

func (f *fakeIntents) CreateIntent(ctx context.Context, price float64) (string, error) {
	f.price = price
	if f.err != nil {
		return "", f.err
	}
	return f.secret, nil
}

type testServer struct {
	router  http.Handler
	store   repository.DocumentStore
	tokens  *service.TokenService
	intents *fakeIntents
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repository.NewMemoryDocumentStore()
	tokens := service.NewTokenService(testSecret, time.Hour)
	users := service.NewUserService(store)
	catalog := service.NewCatalogService(store, cache.NewMemoryCache(), time.Minute)
	purchases := service.NewPurchaseService(store, catalog)
	reviews := service.NewReviewService(store)
	intents := &fakeIntents{secret: "pi_test_secret_abc"}

	mux := router.New(router.Config{
		Handler:         handler.New("toolforge-test", "test", "memory"),
		AuthHandler:     handler.NewAuthHandler(tokens),
		UserHandler:     handler.NewUserHandler(users, tokens),
		CatalogHandler:  handler.NewCatalogHandler(catalog),
		PurchaseHandler: handler.NewPurchaseHandler(purchases),
		ReviewHandler:   handler.NewReviewHandler(reviews),
		PaymentHandler:  handler.NewPaymentHandler(intents),
		RequireAuth:     middleware.RequireAuth(tokens),
		RequireAdmin:    middleware.RequireAdmin(users),
	})

	return &testServer{router: mux, store: store, tokens: tokens, intents: intents}
}

// do runs one request through the full router. token may be "".
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	env := decode(t, rec)
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data: %v (%s)", err, env.Data)
	}
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	if env.Success || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if env.Error.Code != code {
		t.Fatalf("expected error code %s, got %s", code, env.Error.Code)
	}
}

// login upserts a profile through the public endpoint and returns the token
// issued with it.
func (s *testServer) login(t *testing.T, email string, fields model.Partial) string {
	t.Helper()
	if fields == nil {
		fields = model.Partial{}
	}
	rec := s.do(t, http.MethodPatch, "/user/"+email, "", fields)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert user %s: status %d (%s)", email, rec.Code, rec.Body.String())
	}
	var resp handler.UpsertResponse
	decodeData(t, rec, &resp)
	if resp.Token == "" {
		t.Fatalf("expected token in upsert response")
	}
	return resp.Token
}

func (s *testServer) seedTool(t *testing.T, doc model.Document) string {
	t.Helper()
	inserted, err := s.store.Insert(context.Background(), repository.ToolsCollection, doc)
	if err != nil {
		t.Fatalf("seed tool: %v", err)
	}
	return inserted.ID
}

func TestGetTokenIssuesVerifiableToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/getToken", "", map[string]string{"email": "a@x.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var resp handler.TokenResponse
	decodeData(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Fatalf("expected accessToken in response")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims["email"] != "a@x.com" {
		t.Fatalf("expected email claim a@x.com, got %v", claims["email"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected exp claim")
	}
}

func TestGetTokenRequiresEmail(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/getToken", "", map[string]string{})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestUpsertThenAdminLookup(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/admin/a@x.com", "", nil)
	var status handler.AdminStatus
	decodeData(t, rec, &status)
	if status.Admin {
		t.Fatalf("unknown user must not be admin")
	}

	s.login(t, "a@x.com", model.Partial{"name": "Alice", "role": model.RoleAdmin})

	rec = s.do(t, http.MethodGet, "/admin/a@x.com", "", nil)
	decodeData(t, rec, &status)
	if !status.Admin {
		t.Fatalf("expected admin=true after role upsert")
	}

	// Upserting again must update the same profile, not create a second one.
	s.login(t, "a@x.com", model.Partial{"name": "Alice Cooper"})
	rec = s.do(t, http.MethodGet, "/user?email=a@x.com", "", nil)
	var doc model.Document
	decodeData(t, rec, &doc)
	if doc["name"] != "Alice Cooper" {
		t.Fatalf("expected updated name, got %v", doc["name"])
	}
	if doc["role"] != model.RoleAdmin {
		t.Fatalf("role must survive a partial upsert, got %v", doc["role"])
	}
}

func TestGetUserRequiresFilter(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/user", "", nil)
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestUpsertRejectsUnknownFields(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPatch, "/user/a@x.com", "", model.Partial{"isSuperuser": true})
	wantError(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAdminRoutesGating(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@x.com", model.Partial{"role": model.RoleAdmin})
	userToken := s.login(t, "user@x.com", model.Partial{"role": model.RoleUser})
	ghostToken, err := s.tokens.Issue("ghost@x.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// No credential: 401 before the admin gate is ever consulted.
	rec := s.do(t, http.MethodGet, "/allUsers", "", nil)
	wantError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	// Valid token, no stored profile: fail closed.
	rec = s.do(t, http.MethodGet, "/allUsers", ghostToken, nil)
	wantError(t, rec, http.StatusForbidden, "UNKNOWN_SUBJECT")

	// Valid token, non-admin role.
	rec = s.do(t, http.MethodGet, "/allUsers", userToken, nil)
	wantError(t, rec, http.StatusForbidden, "FORBIDDEN")

	// Admin passes.
	rec = s.do(t, http.MethodGet, "/allUsers", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d (%s)", rec.Code, rec.Body.String())
	}
	var users []model.Document
	decodeData(t, rec, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(users))
	}
}

func TestCatalogAdminCRUD(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@x.com", model.Partial{"role": model.RoleAdmin})

	rec := s.do(t, http.MethodPost, "/addTool", adminToken, map[string]interface{}{
		"name":             "impact driver",
		"description":      "18V cordless",
		"price":            129.99,
		"quantity":         25,
		"minOrderQuantity": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var inserted repository.InsertResult
	decodeData(t, rec, &inserted)
	if inserted.ID == "" {
		t.Fatalf("expected inserted id")
	}

	// Public read paths see the new item.
	rec = s.do(t, http.MethodGet, "/getTools", "", nil)
	var tools []model.Document
	decodeData(t, rec, &tools)
	if len(tools) != 1 || tools[0]["name"] != "impact driver" {
		t.Fatalf("expected the inserted tool in the listing, got %v", tools)
	}

	rec = s.do(t, http.MethodGet, "/getTool/"+inserted.ID, "", nil)
	var tool model.Document
	decodeData(t, rec, &tool)
	if tool["name"] != "impact driver" {
		t.Fatalf("expected tool by id, got %v", tool)
	}

	// Patch must show up on subsequent reads despite the listing cache.
	rec = s.do(t, http.MethodPatch, "/updateTool/"+inserted.ID, adminToken,
		model.Partial{"price": 99.99})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, "/getTools", "", nil)
	decodeData(t, rec, &tools)
	if price, _ := model.Float64(tools[0]["price"]); price != 99.99 {
		t.Fatalf("expected updated price in listing, got %v", tools[0]["price"])
	}

	rec = s.do(t, http.MethodDelete, "/deleteTool/"+inserted.ID, adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodDelete, "/deleteTool/"+inserted.ID, adminToken, nil)
	wantError(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = s.do(t, http.MethodGet, "/getTool/"+inserted.ID, "", nil)
	wantError(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestAddToolValidation(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.login(t, "admin@x.com", model.Partial{"role": model.RoleAdmin})

	rec := s.do(t, http.MethodPost, "/addTool", adminToken, map[string]interface{}{
		"price": 10.0,
	})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = s.do(t, http.MethodPost, "/addTool", adminToken, map[string]interface{}{
		"name":  "saw",
		"price": -5.0,
	})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "buyer@x.com", nil)
	toolID := s.seedTool(t, model.Document{
		"name":             "angle grinder",
		"price":            float64(75),
		"quantity":         int64(10),
		"minOrderQuantity": int64(2),
	})

	rec := s.do(t, http.MethodPost, "/purchased", token, map[string]interface{}{
		"toolId":   toolID,
		"quantity": 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp handler.CheckoutResponse
	decodeData(t, rec, &resp)
	if resp.Order.Email != "buyer@x.com" {
		t.Fatalf("expected buyer from token subject, got %q", resp.Order.Email)
	}
	if resp.Order.Status != model.StatusUnpaid || resp.Order.Delivery != model.DeliveryPending {
		t.Fatalf("expected unpaid/pending order, got %+v", resp.Order)
	}

	rec = s.do(t, http.MethodGet, "/getTool/"+toolID, "", nil)
	var tool model.Document
	decodeData(t, rec, &tool)
	if quantity, _ := model.Int64(tool["quantity"]); quantity != 7 {
		t.Fatalf("expected quantity 7 after checkout, got %v", tool["quantity"])
	}

	// Oversell is refused without touching stock.
	rec = s.do(t, http.MethodPost, "/purchased", token, map[string]interface{}{
		"toolId":   toolID,
		"quantity": 8,
	})
	wantError(t, rec, http.StatusConflict, "INSUFFICIENT_STOCK")

	// Below minimum order quantity.
	rec = s.do(t, http.MethodPost, "/purchased", token, map[string]interface{}{
		"toolId":   toolID,
		"quantity": 1,
	})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	// Buying for someone else is refused.
	rec = s.do(t, http.MethodPost, "/purchased", token, map[string]interface{}{
		"toolId":   toolID,
		"quantity": 2,
		"email":    "other@x.com",
	})
	wantError(t, rec, http.StatusForbidden, "FORBIDDEN")
}

func TestCheckoutRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/purchased", "", map[string]interface{}{
		"toolId":   "whatever",
		"quantity": 1,
	})
	wantError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestListOwnOrdersIsScopedToSubject(t *testing.T) {
	s := newTestServer(t)
	aliceToken := s.login(t, "alice@x.com", nil)
	bobToken := s.login(t, "bob@x.com", nil)
	toolID := s.seedTool(t, model.Document{
		"name":     "chisel set",
		"price":    float64(30),
		"quantity": int64(100),
	})

	for _, token := range []string{aliceToken, aliceToken, bobToken} {
		rec := s.do(t, http.MethodPost, "/purchased", token, map[string]interface{}{
			"toolId":   toolID,
			"quantity": 1,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("checkout: status %d (%s)", rec.Code, rec.Body.String())
		}
	}

	rec := s.do(t, http.MethodGet, "/purchased", aliceToken, nil)
	var orders []model.Document
	decodeData(t, rec, &orders)
	if len(orders) != 2 {
		t.Fatalf("expected alice to see 2 orders, got %d", len(orders))
	}
	for _, order := range orders {
		if order["email"] != "alice@x.com" {
			t.Fatalf("expected only alice's orders, got %v", order["email"])
		}
	}

	// Asking for someone else's orders by filter is refused outright.
	rec = s.do(t, http.MethodGet, "/purchased?email=bob@x.com", aliceToken, nil)
	wantError(t, rec, http.StatusForbidden, "FORBIDDEN")

	// Admins see everything.
	adminToken := s.login(t, "admin@x.com", model.Partial{"role": model.RoleAdmin})
	rec = s.do(t, http.MethodGet, "/adminPurchased", adminToken, nil)
	decodeData(t, rec, &orders)
	if len(orders) != 3 {
		t.Fatalf("expected admin to see 3 orders, got %d", len(orders))
	}
	rec = s.do(t, http.MethodGet, "/adminPurchased?email=bob@x.com", adminToken, nil)
	decodeData(t, rec, &orders)
	if len(orders) != 1 {
		t.Fatalf("expected 1 order for bob, got %d", len(orders))
	}
}

func TestPaymentAndDeliveryPatches(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "buyer@x.com", nil)
	toolID := s.seedTool(t, model.Document{
		"name":     "sander",
		"price":    float64(60),
		"quantity": int64(5),
	})

	rec := s.do(t, http.MethodPost, "/purchased", token, map[string]interface{}{
		"toolId":   toolID,
		"quantity": 1,
	})
	var resp handler.CheckoutResponse
	decodeData(t, rec, &resp)
	orderID := resp.Result.ID

	// Delivery confirmation leaves payment state alone.
	rec = s.do(t, http.MethodPatch, "/deliverConfirm/"+orderID, "",
		map[string]string{"delivery": model.DeliveryConfirmed})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	doc, err := s.store.Get(context.Background(), repository.PurchasedCollection, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if doc["status"] != model.StatusUnpaid || doc["delivery"] != model.DeliveryConfirmed {
		t.Fatalf("expected unpaid+confirmed, got %v", doc)
	}

	// Payment patch records the transaction reference and flips status.
	rec = s.do(t, http.MethodPatch, "/purchasedSingle/"+orderID, "",
		map[string]string{"transactionId": "txn_789"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	doc, err = s.store.Get(context.Background(), repository.PurchasedCollection, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if doc["status"] != model.StatusPaid || doc["transactionId"] != "txn_789" {
		t.Fatalf("expected paid order with transaction ref, got %v", doc)
	}

	// Missing transaction reference is rejected.
	rec = s.do(t, http.MethodPatch, "/purchasedSingle/"+orderID, "", map[string]string{})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	// Unknown order id.
	rec = s.do(t, http.MethodPatch, "/purchasedSingle/nope", "",
		map[string]string{"transactionId": "txn_000"})
	wantError(t, rec, http.StatusNotFound, "NOT_FOUND")

	// The buyer can remove the order record.
	rec = s.do(t, http.MethodDelete, "/purchasedSingle/"+orderID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodDelete, "/purchasedSingle/"+orderID, token, nil)
	wantError(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestReviewsNewestFirst(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "rev@x.com", nil)

	for _, content := range []string{"first", "second", "third"} {
		rec := s.do(t, http.MethodPost, "/review", token, map[string]interface{}{
			"name":    "Reviewer",
			"content": content,
			"rating":  5,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("add review: status %d (%s)", rec.Code, rec.Body.String())
		}
	}

	rec := s.do(t, http.MethodGet, "/review", "", nil)
	var reviews []model.Document
	decodeData(t, rec, &reviews)
	if len(reviews) != 3 {
		t.Fatalf("expected 3 reviews, got %d", len(reviews))
	}
	for i, want := range []string{"third", "second", "first"} {
		if reviews[i]["content"] != want {
			t.Fatalf("expected reviews newest-first, got %v", reviews)
		}
	}
	if reviews[0]["email"] != "rev@x.com" {
		t.Fatalf("expected reviewer email from token subject, got %v", reviews[0]["email"])
	}
}

func TestAddReviewRequiresContentAndAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/review", "", map[string]string{"content": "nice"})
	wantError(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	token := s.login(t, "rev@x.com", nil)
	rec = s.do(t, http.MethodPost, "/review", token, map[string]string{"name": "R"})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestCreatePaymentIntent(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 49.99})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp handler.PaymentIntentResponse
	decodeData(t, rec, &resp)
	if resp.ClientSecret != "pi_test_secret_abc" {
		t.Fatalf("expected client secret, got %q", resp.ClientSecret)
	}
	if s.intents.price != 49.99 {
		t.Fatalf("expected price forwarded to provider, got %v", s.intents.price)
	}

	rec = s.do(t, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 0})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = s.do(t, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": -3})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	s.intents.err = errors.New("stripe unreachable")
	rec = s.do(t, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 10})
	wantError(t, rec, http.StatusBadGateway, "UPSTREAM_PAYMENT")
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "a@x.com", model.Partial{"name": "Alice"})

	rec := s.do(t, http.MethodGet, "/user?email=a@x.com", "", nil)
	var doc model.Document
	decodeData(t, rec, &doc)
	id := model.String(doc["id"])
	if id == "" {
		t.Fatalf("expected profile id, got %v", doc)
	}

	rec = s.do(t, http.MethodPatch, "/profile/"+id, token, model.Partial{"phone": "555-0100"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// Role changes do not ride along on the self-service profile patch.
	rec = s.do(t, http.MethodPatch, "/profile/"+id, token, model.Partial{"role": model.RoleAdmin})
	wantError(t, rec, http.StatusBadRequest, "BAD_REQUEST")

	rec = s.do(t, http.MethodGet, "/user?email=a@x.com", "", nil)
	decodeData(t, rec, &doc)
	if doc["phone"] != "555-0100" {
		t.Fatalf("expected patched phone, got %v", doc["phone"])
	}
	if role, ok := doc["role"]; ok && role == model.RoleAdmin {
		t.Fatalf("profile patch must not escalate role")
	}

	rec = s.do(t, http.MethodPatch, "/profile/missing", token, model.Partial{"name": "X"})
	wantError(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestStatusAndRoot(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decode(t, rec)
	if !env.Success {
		t.Fatalf("expected success envelope, got %s", rec.Body.String())
	}
}
