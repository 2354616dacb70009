package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/cydxin/jail-bot/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAllowedRole(t *testing.T) {
	check := RequireAllowedRole(&RoleAuthOptions{AllowedRoles: []string{" 10 ", "20"}})

	assert.Nil(t, check(&discordgo.Member{Roles: []string{"5", "20"}}))
	assert.Nil(t, check(&discordgo.Member{Roles: []string{"10"}}))

	denied := check(&discordgo.Member{Roles: []string{"5"}})
	require.NotNil(t, denied)
	assert.Equal(t, response.CodePermissionDeny, denied.Code)
	assert.True(t, denied.Ephemeral)
	assert.Equal(t, defaultDenyMessage, denied.Msg)

	assert.NotNil(t, check(nil), "DM callers have no member")
}

func TestRequireAllowedRole_EmptyListDeniesAll(t *testing.T) {
	check := RequireAllowedRole(nil)
	assert.NotNil(t, check(&discordgo.Member{Roles: []string{"1"}}))

	custom := RequireAllowedRole(&RoleAuthOptions{DenyMessage: "nope"})
	assert.Equal(t, "nope", custom(&discordgo.Member{}).Msg)
}

func TestGinAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinAuthMiddleware(&AuthOptions{Token: "secret"}))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	cases := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer secret", "", http.StatusOK},
		{"wrong", "Bearer nope", "", http.StatusUnauthorized},
		{"query", "", "?token=secret", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x"+c.query, nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, c.code, w.Code)
		})
	}
}

func TestGinAuthMiddleware_NoToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinAuthMiddleware(nil))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
