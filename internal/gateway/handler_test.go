package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shareit-go/shareit/internal/pkg/middleware"
)

var gatewayNow = time.Date(2030, 5, 1, 8, 0, 0, 0, time.UTC)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	UserID string
	Body   []byte
}

type fakeServer struct {
	mu       sync.Mutex
	requests []capturedRequest
	status   int
	body     string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, capturedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		UserID: r.Header.Get(middleware.UserIDHeader),
		Body:   body,
	})
	status, respBody := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(respBody))
}

func (f *fakeServer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeServer) last() capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func setupGateway(t *testing.T, status int, body string, settings BreakerSettings) (*gin.Engine, *fakeServer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := &fakeServer{status: status, body: body}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	h := NewHandler(NewClient(srv.URL, 5*time.Second, settings, zap.NewNop()), zap.NewNop())
	h.now = func() time.Time { return gatewayNow }

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	h.RegisterRoutes(r.Group(""))
	return r, fake
}

func call(r http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGateway_UnknownStateNeverReachesServer(t *testing.T) {
	r, fake := setupGateway(t, http.StatusOK, `{"success":true,"data":[]}`, DefaultBreakerSettings)
	user := uuid.NewString()

	w := call(r, http.MethodGet, "/bookings?state=UNSUPPORTED_STATUS", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unknown state: UNSUPPORTED_STATUS")

	w = call(r, http.MethodGet, "/bookings/owner?state=bogus", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, fake.count())
}

func TestGateway_ListNormalizesQuery(t *testing.T) {
	r, fake := setupGateway(t, http.StatusOK, `{"success":true,"data":[]}`, DefaultBreakerSettings)
	user := uuid.NewString()

	w := call(r, http.MethodGet, "/bookings/owner?state=current", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())

	got := fake.last()
	assert.Equal(t, "/bookings/owner", got.Path)
	assert.Equal(t, "from=0&size=10&state=CURRENT", got.Query)
	assert.Equal(t, user, got.UserID)

	w = call(r, http.MethodGet, "/bookings?from=-1", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = call(r, http.MethodGet, "/bookings?size=0", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, fake.count())
}

func TestGateway_BookItemValidation(t *testing.T) {
	r, fake := setupGateway(t, http.StatusCreated, `{"success":true}`, DefaultBreakerSettings)
	user := uuid.NewString()
	itemID := uuid.New()

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"missing item", map[string]interface{}{"start": gatewayNow.Add(time.Hour), "end": gatewayNow.Add(2 * time.Hour)}, http.StatusBadRequest},
		{"end before start", BookItemRequest{ItemID: itemID, Start: gatewayNow.Add(2 * time.Hour), End: gatewayNow.Add(time.Hour)}, http.StatusBadRequest},
		{"end equals start", BookItemRequest{ItemID: itemID, Start: gatewayNow.Add(time.Hour), End: gatewayNow.Add(time.Hour)}, http.StatusBadRequest},
		{"start in past", BookItemRequest{ItemID: itemID, Start: gatewayNow.Add(-time.Hour), End: gatewayNow.Add(time.Hour)}, http.StatusBadRequest},
		{"valid", BookItemRequest{ItemID: itemID, Start: gatewayNow.Add(time.Hour), End: gatewayNow.Add(2 * time.Hour)}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(r, http.MethodPost, "/bookings", user, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	require.Equal(t, 1, fake.count())
	var forwarded BookItemRequest
	require.NoError(t, json.Unmarshal(fake.last().Body, &forwarded))
	assert.Equal(t, itemID, forwarded.ItemID)
}

func TestGateway_RequiresIdentity(t *testing.T) {
	r, fake := setupGateway(t, http.StatusOK, `{}`, DefaultBreakerSettings)

	w := call(r, http.MethodGet, "/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = call(r, http.MethodPost, "/items", "", ItemRequest{Name: "a", Description: "b"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, fake.count())
}

func TestGateway_DecideRequiresApprovedFlag(t *testing.T) {
	r, fake := setupGateway(t, http.StatusOK, `{"success":true}`, DefaultBreakerSettings)
	user := uuid.NewString()
	path := "/bookings/" + uuid.NewString()

	w := call(r, http.MethodPatch, path, user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(r, http.MethodPatch, path+"?approved=TRUE", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved=true", fake.last().Query)
	assert.Equal(t, http.MethodPatch, fake.last().Method)
}

func TestGateway_RelaysServerErrors(t *testing.T) {
	r, _ := setupGateway(t, http.StatusNotFound, `{"success":false,"error":{"code":"NOT_FOUND","message":"Booking with id x not found"}}`, DefaultBreakerSettings)

	w := call(r, http.MethodGet, "/bookings/"+uuid.NewString(), uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGateway_UserAndItemValidation(t *testing.T) {
	r, fake := setupGateway(t, http.StatusCreated, `{"success":true}`, DefaultBreakerSettings)
	user := uuid.NewString()

	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/users", "", UserRequest{Name: "Ann", Email: "nope"}).Code)
	assert.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/users", "", UserRequest{Name: "Ann", Email: "ann@example.com"}).Code)

	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/items", user, map[string]string{"name": "Saw"}).Code)
	available := true
	assert.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/items", user, ItemRequest{Name: "Saw", Description: "Hand saw", Available: &available}).Code)

	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/items/"+uuid.NewString()+"/comment", user, map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/items/not-a-uuid", user, nil).Code)
	assert.Equal(t, 2, fake.count())
}

func TestGateway_CircuitOpensOnServerFailures(t *testing.T) {
	r, fake := setupGateway(t, http.StatusInternalServerError, `{"success":false}`, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute})
	user := uuid.NewString()
	path := "/bookings/" + uuid.NewString()

	for i := 0; i < 2; i++ {
		w := call(r, http.MethodGet, path, user, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code, "5xx replies are relayed")
	}

	w := call(r, http.MethodGet, path, user, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 2, fake.count())
}

func TestGateway_ServerUnreachable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h := NewHandler(NewClient(url, time.Second, DefaultBreakerSettings, zap.NewNop()), zap.NewNop())
	r := gin.New()
	h.RegisterRoutes(r.Group(""))

	w := call(r, http.MethodGet, "/users/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
