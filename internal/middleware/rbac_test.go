package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/uni-scheduler/timetable-api/internal/models"
)

func performWithRole(role string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	router := gin.New()
	if role != "" {
		router.Use(func(c *gin.Context) {
			c.Set(ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
		})
	}
	router.GET("/protected", handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	recorder := performWithRole(models.RoleScheduler, RequireRoles(models.RoleScheduler))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRequireRolesAdminAlwaysPasses(t *testing.T) {
	recorder := performWithRole(models.RoleAdmin, RequireRoles(models.RoleScheduler))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	recorder := performWithRole(models.RoleViewer, RequireRoles(models.RoleScheduler))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	recorder := performWithRole("", RequireRoles(models.RoleScheduler))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
