package delivery

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	APIPrefix     string
	SessionSecret string
	StaticDir     string
}

// Router holds the engine and the two route groups under the API prefix.
// Admin routes require a session with the admin flag set.
type Router struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Admin  *gin.RouterGroup
}

type RouteRegistrar interface {
	RegisterRoutes(public, admin gin.IRouter)
}

func NewRouter(cfg RouterConfig, logger *logrus.Logger) *Router {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))
	engine.Use(middleware.Sessions(cfg.SessionSecret))

	api := engine.Group(cfg.APIPrefix)
	admin := api.Group("", middleware.RequireAdmin(logger))

	r := &Router{Engine: engine, API: api, Admin: admin}
	if cfg.StaticDir != "" {
		r.serveStatic(cfg.StaticDir, cfg.APIPrefix, logger)
	}
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) {
	for _, reg := range registrars {
		reg.RegisterRoutes(r.API, r.Admin)
	}
}

// serveStatic serves the storefront files for any path no route claimed.
func (r *Router) serveStatic(dir, apiPrefix string, logger *logrus.Logger) {
	fs := gin.Dir(dir, false)
	fileServer := http.FileServer(fs)
	index := filepath.Join(dir, "index.html")
	r.Engine.NoRoute(func(c *gin.Context) {
		isAPI := apiPrefix != "" && strings.HasPrefix(c.Request.URL.Path, apiPrefix+"/")
		if isAPI || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			ErrorResponse(c, http.StatusNotFound, "Not found")
			return
		}
		if f, err := fs.Open(c.Request.URL.Path); err == nil {
			f.Close()
			fileServer.ServeHTTP(c.Writer, c.Request)
			return
		}
		c.File(index)
	})
	logger.Infof("Serving static files from %s", dir)
}
