package session

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

func TestClientProvider(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	id, err := ClientProvider{}.SessionID(c, "  session_123_abc ")
	require.NoError(t, err)
	assert.Equal(t, "session_123_abc", id)
}

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	p, err := NewTokenProvider([]byte("test-secret"), time.Hour, false)
	require.NoError(t, err)

	token, err := p.Issue("visitor-1")
	require.NoError(t, err)

	id, err := p.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", id)
}

func TestTokenProvider_RejectsForeignOrExpiredTokens(t *testing.T) {
	p, err := NewTokenProvider([]byte("test-secret"), time.Hour, false)
	require.NoError(t, err)
	other, err := NewTokenProvider([]byte("other-secret"), time.Hour, false)
	require.NoError(t, err)

	forged, err := other.Issue("visitor-1")
	require.NoError(t, err)
	_, err = p.Validate(forged)
	assert.Error(t, err)

	token, err := p.Issue("visitor-1")
	require.NoError(t, err)
	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.Validate(token)
	assert.Error(t, err)
}

func TestTokenProvider_SessionID(t *testing.T) {
	p, err := NewTokenProvider([]byte("test-secret"), time.Hour, false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/analytics/page-view", nil)

	id, err := p.SessionID(c, "client-claimed")
	require.NoError(t, err)
	assert.NotEqual(t, "client-claimed", id)
	assert.NotEmpty(t, id)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// A second request carrying the cookie keeps the same id.
	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodPost, "/api/analytics/page-view", nil)
	c2.Request.AddCookie(cookies[0])

	again, err := p.SessionID(c2, "")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Empty(t, w2.Result().Cookies())
}

func TestNewTokenProvider_RequiresSecret(t *testing.T) {
	_, err := NewTokenProvider(nil, time.Hour, false)
	assert.Error(t, err)
}
