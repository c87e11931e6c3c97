package middlewares

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/sirupsen/logrus"
)

// An Evicter drops the cached data of a user.
type Evicter interface {
	Evict(ctx context.Context, userID string) error
}

// EvictOnWrite evicts the cached data of the current_user after each successful mutating request.
// It must be registered after the Session middleware.
func EvictOnWrite(cache Evicter, logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}

			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return nil
			}
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}

			user, ok := c.Get(CurrentUserContextKey).(*model.User)
			if !ok {
				return nil
			}

			if err := cache.Evict(c.Request().Context(), user.ID); err != nil {
				logger.WithError(err).WithField("user_id", user.ID).Warn("could not evict cache")
			}
			return nil
		}
	}
}
