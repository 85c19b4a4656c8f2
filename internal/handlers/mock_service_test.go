package handlers

import (
	"context"
	"net/http"
	"sync"

	"sentinel_cam/internal/models"
	"sentinel_cam/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	subject  string
	parseErr error

	lastParseToken string
}

func (m *mockAuth) GenerateToken(subject string) (string, error) {
	return "token-for-" + subject, nil
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.subject, m.parseErr
}

type mockMonitoring struct {
	mu     sync.Mutex
	status models.DeviceStatus
	err    error
	calls  int
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (models.DeviceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.status, m.err
}

func (m *mockMonitoring) moveTo(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.State = state
}

type mockEventLog struct {
	resp   []models.CycleEvent
	err    error
	filter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.CycleEvent, error) {
	m.filter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, metrics http.Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, metrics, nil)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
