package tests

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/testutil"
)

func (suite *APITestSuite) TestRegisterLoginAndMe() {
	w := suite.request(http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email":    "Fresh@Example.com",
		"password": "secret123",
		"role":     "BUYER",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var registered services.AuthResponse
	suite.decode(w, &registered)
	suite.Equal("fresh@example.com", registered.User.Email)
	suite.NotEmpty(registered.AccessToken)

	suite.requireError(suite.request(http.MethodPost, "/auth/register", "", map[string]interface{}{
		"email": "fresh@example.com", "password": "secret123", "role": "SELLER",
	}), http.StatusConflict, "email already registered")

	suite.requireError(suite.request(http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email": "fresh@example.com", "password": "wrong-one1",
	}), http.StatusUnauthorized, "invalid credentials")

	w = suite.request(http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email": "fresh@example.com", "password": "secret123",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var login services.AuthResponse
	suite.decode(w, &login)
	suite.Equal("bearer", login.TokenType)

	w = suite.request(http.MethodGet, "/auth/me", login.AccessToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var me models.User
	suite.decode(w, &me)
	suite.Equal(registered.User.ID, me.ID)
	suite.NotContains(w.Body.String(), "password")
}

func (suite *APITestSuite) TestAdminEndpoints() {
	admin := testutil.CreateUser(suite.T(), suite.db, models.RoleAdmin)
	buyer := testutil.CreateUser(suite.T(), suite.db, models.RoleBuyer)
	adminToken := suite.tokenFor(admin)

	suite.requireError(suite.request(http.MethodGet, "/admin/stats", suite.tokenFor(buyer), nil), http.StatusForbidden, "")

	w := suite.request(http.MethodGet, "/admin/health", adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"ok":true}`, w.Body.String())

	w = suite.request(http.MethodGet, "/admin/stats", adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats services.AdminDashboardStats
	suite.decode(w, &stats)
	suite.Equal(int64(2), stats.TotalUsers)

	w = suite.request(http.MethodPut, fmt.Sprintf("/admin/users/%d/status", buyer.ID), adminToken, map[string]interface{}{"status": "SUSPENDED", "reason": "fraud"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodGet, "/admin/audit-logs?limit=10", adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Items      []models.AuditLog `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	suite.decode(w, &page)
	suite.Equal(int64(1), page.Pagination.Total)
	suite.Require().Len(page.Items, 1)
	suite.Equal(models.AuditUserStatusChanged, page.Items[0].Action)
	suite.Equal("1", w.Header().Get("X-Total-Count"))

	w = suite.request(http.MethodPost, "/admin/resale/prune", adminToken, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"ok":true,"removed":0}`, w.Body.String())
}

func (suite *APITestSuite) TestHealthMetricsAndFallbacks() {
	w := suite.request(http.MethodGet, "/health", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"healthy"}`, w.Body.String())
	suite.NotEmpty(w.Header().Get("X-Request-ID"))

	suite.requireError(suite.request(http.MethodGet, "/no/such/route", "", nil), http.StatusNotFound, "")

	w = suite.request(http.MethodGet, "/metrics", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.True(strings.Contains(w.Body.String(), "ifm_http_requests_total"), "request counter exported")
}
