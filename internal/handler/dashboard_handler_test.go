package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hostelhub/mess-api/internal/dto"
	"github.com/hostelhub/mess-api/internal/middleware"
	"github.com/hostelhub/mess-api/internal/models"
)

type fakeDashboardSrv struct {
	studentResp *dto.StudentDashboardResponse
	studentErr  error
	studentHit  bool
	adminResp   *dto.AdminDashboardResponse
	adminErr    error
	adminHit    bool
	lastUserID  string
}

func (f *fakeDashboardSrv) Student(_ context.Context, userID string) (*dto.StudentDashboardResponse, bool, error) {
	f.lastUserID = userID
	return f.studentResp, f.studentHit, f.studentErr
}

func (f *fakeDashboardSrv) Admin(context.Context) (*dto.AdminDashboardResponse, bool, error) {
	return f.adminResp, f.adminHit, f.adminErr
}

func TestDashboardHandlerStudentRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/student", nil)

	handler.Student(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerStudentSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		studentResp: &dto.StudentDashboardResponse{
			StudentDashboard: models.StudentDashboard{
				TotalSpent:   decimal.RequireFromString("245.50"),
				MonthlySpent: decimal.RequireFromString("80"),
			},
		},
		studentHit: true,
	}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/student", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", service.lastUserID)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "245.5", envelope.Data["total_spent"])
}

func TestDashboardHandlerStudentServiceFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{studentErr: errors.New("db down")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/student", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Student(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboardHandlerAdminSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		adminResp: &dto.AdminDashboardResponse{
			AdminDashboard: models.AdminDashboard{UniqueUsersToday: 12, OpenIssues: 3},
		},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)

	handler.Admin(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(12), envelope.Data["unique_users_today"])
	assert.Equal(t, float64(3), envelope.Data["open_issues"])
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
