package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/silverlynx18/sock/internal/auth"
	"github.com/silverlynx18/sock/internal/realtime"
)

func TestRealtimeHandlerUnauthorizedWithoutToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := realtime.NewHub()
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	handler := NewRealtimeHandler(hub, jwtSvc, realtime.StreamNotifications)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws", nil)

	handler.Stream(c)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRealtimeHandlerRejectsInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := realtime.NewHub()
	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret"})
	require.NoError(t, err)

	handler := NewRealtimeHandler(hub, jwtSvc, realtime.StreamNotifications)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws?token=not-a-token", nil)

	handler.Stream(c)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseStreamsParam(t *testing.T) {
	require.Nil(t, parseStreamsParam("  "))
	require.Equal(t, []string{"statuses", "invites"}, parseStreamsParam("Statuses, invites,"))
}
