package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/catalog"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
	"golang.org/x/time/rate"
)

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeMailer struct {
	messages []domain.MailMessage
	err      error
}

func (f *fakeMailer) PublishMail(msg domain.MailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func newTestStore() *catalog.MemoryStore {
	store := &catalog.MemoryStore{
		Regions: []*domain.Region{
			{ID: "R1", Name: "江南"},
			{ID: "R2", Name: "岭南"},
		},
		Tours: []*domain.Tour{
			{ID: 1, RegionID: "R1", Name: "A", DurationDays: 2, Cost: 100},
			{ID: 2, RegionID: "R1", Name: "B", DurationDays: 2, Cost: 120},
		},
		Attractions: []*domain.Attraction{
			{ID: 1, Name: "拙政园", CulturalValue: 10},
			{ID: 2, Name: "寒山寺", CulturalValue: 8},
		},
	}
	store.Link(1, 1)
	store.Link(2, 2)
	return store
}

func newTestHandler(t *testing.T) (*Handler, *catalog.MemoryStore, *miniredis.Miniredis) {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Optimizer.SearchTimeout = 5
	cfg.Optimizer.RateLimit = 1000
	cfg.Optimizer.RateBurst = 1000
	cfg.Redis.OperationExpiration = 5

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h, err := NewHandler(cfg, nil, &fakeMailer{}, rdb, nil)
	require.NoError(t, err)

	store := newTestStore()
	h.store = store
	require.NoError(t, h.ReloadCatalog())
	h.RegisterRoutes()

	return h, store, mr
}

func do(t *testing.T, h *Handler, method string, path string, body any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)

	var resp testResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func tokenCookie(t *testing.T, h *Handler, role domain.Role) *http.Cookie {
	t.Helper()

	ss, _, err := h.issueToken("1", string(role))
	require.NoError(t, err)
	return &http.Cookie{Name: tokenCookieName, Value: ss}
}

func TestHealthz(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodGet, "/healthz", nil)
	require.True(t, resp.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.EqualValues(t, 2, data["regions"])
	require.EqualValues(t, 2, data["tours"])
}

func TestGeneratePackage(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodPost, "/regions/R1/package", map[string]any{"maxDays": 3})
	require.True(t, resp.Success, resp.Message)

	var pkg domain.Package
	require.NoError(t, json.Unmarshal(resp.Data, &pkg))
	require.Equal(t, "R1", pkg.RegionID)
	require.Len(t, pkg.Tours, 1)
	require.Equal(t, int64(1), pkg.Tours[0].ID)
	require.Equal(t, int64(10), pkg.TotalValue)
	require.Equal(t, 2, pkg.Stats.Candidates)
}

func TestGeneratePackageWithoutBody(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodPost, "/regions/R1/package", nil)
	require.True(t, resp.Success, resp.Message)

	var pkg domain.Package
	require.NoError(t, json.Unmarshal(resp.Data, &pkg))
	require.Len(t, pkg.Tours, 2)
	require.Equal(t, int64(18), pkg.TotalValue)
	require.Equal(t, 220.0, pkg.TotalCost)
}

func TestGeneratePackageEmptyRegion(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodPost, "/regions/R2/package", map[string]any{})
	require.True(t, resp.Success, resp.Message)

	var pkg domain.Package
	require.NoError(t, json.Unmarshal(resp.Data, &pkg))
	require.Empty(t, pkg.Tours)
	require.Zero(t, pkg.TotalValue)
}

func TestGeneratePackageRejectsBadRequests(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodPost, "/regions/R404/package", nil)
	require.False(t, resp.Success)
	require.Equal(t, "地区不存在", resp.Message)

	_, resp = do(t, h, http.MethodPost, "/regions/R1/package", map[string]any{"maxDays": -1})
	require.False(t, resp.Success)

	_, resp = do(t, h, http.MethodPost, "/regions/R1/package", map[string]any{"maxBudget": -0.5})
	require.False(t, resp.Success)

	// 拼错的字段不能被当成不限制
	_, resp = do(t, h, http.MethodPost, "/regions/R1/package", map[string]any{"maxDay": 3})
	require.False(t, resp.Success)
}

func TestGeneratePackageRateLimited(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.limiter = rate.NewLimiter(0, 1)

	rec, resp := do(t, h, http.MethodPost, "/regions/R1/package", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	rec, resp = do(t, h, http.MethodPost, "/regions/R1/package", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.False(t, resp.Success)
}

func TestGetTourAndAttraction(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodGet, "/tours/1", nil)
	require.True(t, resp.Success, resp.Message)

	var tour struct {
		ID          int64                `json:"id"`
		Attractions []*domain.Attraction `json:"attractions"`
		Value       int64                `json:"value"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &tour))
	require.Equal(t, int64(1), tour.ID)
	require.Len(t, tour.Attractions, 1)
	require.Equal(t, int64(10), tour.Value)

	_, resp = do(t, h, http.MethodGet, "/attractions/2", nil)
	require.True(t, resp.Success, resp.Message)

	var attraction struct {
		Name  string         `json:"name"`
		Tours []*domain.Tour `json:"tours"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &attraction))
	require.Equal(t, "寒山寺", attraction.Name)
	require.Len(t, attraction.Tours, 1)
	require.Equal(t, int64(2), attraction.Tours[0].ID)

	_, resp = do(t, h, http.MethodGet, "/tours/abc", nil)
	require.Equal(t, "线路ID无效", resp.Message)

	_, resp = do(t, h, http.MethodGet, "/attractions/404", nil)
	require.Equal(t, "景点不存在", resp.Message)
}

func TestGetRegionTours(t *testing.T) {
	h, _, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodGet, "/regions/R1/tours", nil)
	require.True(t, resp.Success, resp.Message)

	var tours []struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &tours))
	require.Len(t, tours, 2)
	require.Equal(t, int64(1), tours[0].ID)
	require.Equal(t, int64(2), tours[1].ID)
}

func TestReloadCatalogRequiresAdmin(t *testing.T) {
	h, store, _ := newTestHandler(t)

	_, resp := do(t, h, http.MethodPost, "/catalog/reload", nil)
	require.False(t, resp.Success)
	require.Equal(t, "用户未登录", resp.Message)

	_, resp = do(t, h, http.MethodPost, "/catalog/reload", nil, tokenCookie(t, h, domain.RoleEditor))
	require.False(t, resp.Success)
	require.Equal(t, "权限不足", resp.Message)

	store.Tours = append(store.Tours, &domain.Tour{ID: 3, RegionID: "R2", DurationDays: 1, Cost: 10})
	_, resp = do(t, h, http.MethodPost, "/catalog/reload", nil, tokenCookie(t, h, domain.RoleAdmin))
	require.True(t, resp.Success, resp.Message)

	_, resp = do(t, h, http.MethodGet, "/tours/3", nil)
	require.True(t, resp.Success, resp.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	h, _, mr := newTestHandler(t)
	cookie := tokenCookie(t, h, domain.RoleAdmin)

	claims, err := h.parseToken(cookie.Value)
	require.NoError(t, err)

	_, resp := do(t, h, http.MethodPost, "/auth/logout", nil, cookie)
	require.True(t, resp.Success)
	require.True(t, mr.Exists(revokedTokenKey(claims.ID)))
	require.Positive(t, mr.TTL(revokedTokenKey(claims.ID)))

	_, resp = do(t, h, http.MethodPost, "/catalog/reload", nil, cookie)
	require.False(t, resp.Success)
	require.Equal(t, "令牌已失效", resp.Message)

	_, resp = do(t, h, http.MethodPost, "/catalog/reload", nil, &http.Cookie{Name: tokenCookieName, Value: "garbage"})
	require.Equal(t, "无效的令牌", resp.Message)
}

func TestHandleCatalogEvent(t *testing.T) {
	h, store, _ := newTestHandler(t)

	// 自己发出的事件直接忽略
	store.Err = errors.New("should not be called")
	require.NoError(t, h.HandleCatalogEvent(domain.CatalogEvent{Type: domain.CatalogEventTourCreated, Origin: h.InstanceID}))
	require.Error(t, h.HandleCatalogEvent(domain.CatalogEvent{Type: domain.CatalogEventTourCreated, Origin: "other"}))

	// 加载失败时保留旧的快照
	_, resp := do(t, h, http.MethodGet, "/tours/1", nil)
	require.True(t, resp.Success)

	store.Err = nil
	store.Tours = store.Tours[:1]
	require.NoError(t, h.HandleCatalogEvent(domain.CatalogEvent{Type: domain.CatalogEventTourDeleted, EntityID: "2", Origin: "other"}))

	_, resp = do(t, h, http.MethodGet, "/tours/2", nil)
	require.Equal(t, "线路不存在", resp.Message)
}

// slowStore 记录同时进行的加载数量
type slowStore struct {
	*catalog.MemoryStore
	active    atomic.Int32
	maxActive atomic.Int32
}

func (s *slowStore) GetAllTours() ([]*domain.Tour, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)

	for {
		m := s.maxActive.Load()
		if n <= m || s.maxActive.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	return s.MemoryStore.GetAllTours()
}

func TestReloadCatalogSerialized(t *testing.T) {
	h, store, _ := newTestHandler(t)

	slow := &slowStore{MemoryStore: store}
	h.store = slow

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, h.ReloadCatalog())
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, slow.maxActive.Load())
}

func TestSetEventsState(t *testing.T) {
	h, store, _ := newTestHandler(t)

	h.SetEventsState(false)
	rec, resp := do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.False(t, resp.Success)
	require.Equal(t, "目录事件监听已中断", resp.Message)

	// 中断期间错过的变更在恢复时补上
	store.Tours = store.Tours[:1]
	h.SetEventsState(true)

	rec, resp = do(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.EqualValues(t, 1, data["tours"])

	// 一直正常时不会重新加载
	store.Err = errors.New("should not be called")
	h.SetEventsState(true)
	_, resp = do(t, h, http.MethodGet, "/healthz", nil)
	require.True(t, resp.Success)
}

func TestSharePackage(t *testing.T) {
	h, _, _ := newTestHandler(t)
	mailer := h.mailer.(*fakeMailer)

	_, resp := do(t, h, http.MethodPost, "/regions/R1/package/share", map[string]any{"to": "traveler@example.com", "maxDays": 3})
	require.True(t, resp.Success, resp.Message)

	require.Len(t, mailer.messages, 1)
	msg := mailer.messages[0]
	require.Equal(t, "tour_package", msg.Type)
	require.Equal(t, "traveler@example.com", msg.To)

	data, ok := msg.Data.(domain.TourPackageMailData)
	require.True(t, ok)
	require.Equal(t, "江南", data.RegionName)
	require.Equal(t, []domain.TourPackageMailTour{{Name: "A", DurationDays: 2, Cost: 100}}, data.Tours)
	require.Equal(t, []string{"拙政园"}, data.Attractions)
	require.Equal(t, int64(2), data.TotalDays)
	require.Equal(t, 100.0, data.TotalCost)
	require.Equal(t, int64(10), data.TotalValue)
}

func TestSharePackageRejectsBadRequests(t *testing.T) {
	h, _, _ := newTestHandler(t)
	mailer := h.mailer.(*fakeMailer)

	_, resp := do(t, h, http.MethodPost, "/regions/R1/package/share", map[string]any{"to": "not-an-email"})
	require.False(t, resp.Success)

	_, resp = do(t, h, http.MethodPost, "/regions/R1/package/share", map[string]any{"maxDays": 3})
	require.False(t, resp.Success)
	require.Empty(t, mailer.messages)

	mailer.err = errors.New("channel closed")
	rec, resp := do(t, h, http.MethodPost, "/regions/R1/package/share", map[string]any{"to": "traveler@example.com"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, resp.Success)
}
