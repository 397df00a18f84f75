package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("cashier", "/cashier")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cashier/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("cashier", "/cashier")
		assert.Equal(t, "cashier", g.Name())
		assert.Equal(t, "/cashier", g.Prefix())
	})

	methods := []string{http.MethodGet, http.MethodPost, http.MethodPut}
	for _, method := range methods {
		t.Run("registers "+method, func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("test", "/test")
			handler := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
			switch method {
			case http.MethodGet:
				g.GET("/items/:id", handler)
			case http.MethodPost:
				g.POST("/items/:id", handler)
			case http.MethodPut:
				g.PUT("/items/:id", handler)
			}
			g.RegisterRoutes(engine.Group("/api/v1"))

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/test/items/42", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, method, w.Body.String())
		})
	}

	t.Run("middleware applies to subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("cashier", "/cashier")
		g.Use(func(c *gin.Context) {
			c.Header("X-Group", "cashier")
			c.Next()
		})
		g.Group("shifts", "/shifts").GET("/:id", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("id"))
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cashier/shifts/abc", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc", w.Body.String())
		assert.Equal(t, "cashier", w.Header().Get("X-Group"))
	})

	t.Run("static segment beside a parameter", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("vouchers", "/vouchers")
		g.GET("/active", func(c *gin.Context) { c.String(http.StatusOK, "active") })
		g.GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, "id="+c.Param("id")) })
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/vouchers/active", nil))
		assert.Equal(t, "active", w.Body.String())

		w = httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/vouchers/v-1", nil))
		assert.Equal(t, "id=v-1", w.Body.String())
	})
}

func TestDomainGroup_Routes(t *testing.T) {
	noop := func(*gin.Context) {}
	g := NewDomainGroup("cashier", "/cashier")
	g.GET("/history", noop)
	g.Group("days", "/days").POST("", noop).GET("/:date", noop)

	assert.Equal(t, []string{
		"GET /cashier/history",
		"POST /cashier/days",
		"GET /cashier/days/:date",
	}, g.Routes())
}
