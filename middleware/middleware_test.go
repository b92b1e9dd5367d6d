package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func staffEcho(secret string) *gin.Engine {
	r := gin.New()
	r.Use(Logger(), StaffAuth(secret))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, StaffID(c, c.Query("staffId")))
	})
	return r
}

func TestLogger_SetsRequestID(t *testing.T) {
	r := staffEcho("")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestStaffAuth_NoSecretFallsBackToRequestField(t *testing.T) {
	r := staffEcho("")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?staffId=s9", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s9", w.Body.String())
}

func TestStaffAuth_ValidToken(t *testing.T) {
	r := staffEcho("secret")
	token, err := NewStaffToken("secret", "s1", "Lan", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami?staffId=spoofed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", w.Body.String())
}

func TestStaffAuth_Rejects(t *testing.T) {
	r := staffEcho("secret")

	wrongKey, err := NewStaffToken("other", "s1", "", time.Hour)
	require.NoError(t, err)
	expired, err := NewStaffToken("secret", "s1", "", -time.Minute)
	require.NoError(t, err)
	noStaff, err := NewStaffToken("secret", "", "", time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"missing":   "",
		"no bearer": "Token abc",
		"wrong key": "Bearer " + wrongKey,
		"expired":   "Bearer " + expired,
		"no staff":  "Bearer " + noStaff,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}
