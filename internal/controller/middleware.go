package controller

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"artbid-api/internal/entity"
	"artbid-api/internal/platform/logger"

	"github.com/labstack/echo"
)

type SessionResolver interface {
	CurrentUser(r *http.Request) (*entity.Identity, bool)
}

// sessionMiddleware attaches the caller's identity when the request carries
// a valid token. It never rejects a request.
func sessionMiddleware(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if identity, ok := sessions.CurrentUser(c.Request()); ok {
				c.Set(identityKey, identity)
			}

			return next(c)
		}
	}
}

func requestLogMiddleware(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			fields := []interface{}{
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"latency", time.Since(started).String(),
			}
			if identity := currentUser(c); identity != nil {
				fields = append(fields, "user_id", identity.UserId.String())
			}
			if err != nil {
				log.Warnw("request failed", append(fields, "error", err)...)
			} else {
				log.Infow("request handled", fields...)
			}

			return nil
		}
	}
}

func recoverMiddleware(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorw("panic while handling request",
						"path", c.Request().URL.Path, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
					err = c.JSON(http.StatusInternalServerError, errorResponse{Reason: "Internal error"})
				}
			}()

			return next(c)
		}
	}
}
