package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"dataaccess-backend/internal/application/validation"
	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/security"
)

// Request headers naming the caller
const (
	HeaderUserID = "X-User-Id"
	HeaderRole   = "X-User-Role"
)

func requestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

func rateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, id string, _ error) error {
			klog.V(2).Infof("http: request of %s blocked by rate limiter", id)
			return c.JSON(http.StatusTooManyRequests, errorBody{Errors: []validation.ErrorEntry{{
				Code: "TOO_MANY_REQUESTS",
				Desc: "too many requests",
			}}})
		},
	})
}

// principal puts the caller named by the request headers into the request context
func principal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Request().Header
		role := strings.TrimSpace(h.Get(HeaderRole))
		raw := strings.TrimSpace(h.Get(HeaderUserID))
		if role == "" && raw == "" {
			return next(c)
		}

		p := models.Principal{Role: role}
		if raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return validation.NewValidationError(validation.CodeInvalid, "user id must be an integer", HeaderUserID)
			}
			p.UserID = id
		}

		req := c.Request()
		c.SetRequest(req.WithContext(security.WithPrincipal(req.Context(), p)))
		return next(c)
	}
}

func accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		klog.V(3).Infof("http: %s %s %s took %s",
			c.Response().Header().Get(echo.HeaderXRequestID), c.Request().Method, c.Request().URL.Path, time.Since(start))
		return err
	}
}
