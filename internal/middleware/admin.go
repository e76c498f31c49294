package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	SessionName     = "farm_session"
	sessionAdminKey = "is_admin"
	sessionMaxAge   = 24 * time.Hour
)

// Sessions installs the signed cookie store that carries the admin flag.
func Sessions(secret string) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(SessionName, store)
}

func IsAdmin(c *gin.Context) bool {
	v, ok := sessions.Default(c).Get(sessionAdminKey).(bool)
	return ok && v
}

func SetAdmin(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Set(sessionAdminKey, true)
	return sess.Save()
}

func ClearAdmin(c *gin.Context) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	return sess.Save()
}

func RequireAdmin(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			log.Warnf("Middleware: Unauthenticated admin request %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
			return
		}
		c.Next()
	}
}
