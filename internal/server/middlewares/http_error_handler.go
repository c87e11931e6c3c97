package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bookmarkd/internal/model"
	"github.com/mdouchement/bookmarkd/internal/sferror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// HTTPErrorHandler returns a handler that formats rendered errors.
// Any error that is not an explicit client error is rendered as a generic 500
// and its details are only logged along with a correlation id.
func HTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		switch e := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if e.Code >= http.StatusInternalServerError {
				internal(logger, err, c)
				return
			}

			if e.Internal != nil {
				logger.WithError(e.Internal).Debug("echo error")
			}
			_ = c.JSON(e.Code, echo.Map{
				"error": echo.Map{
					"message": e.Message,
				},
			})
		case *sferror.SFError:
			status := sferror.StatusCode(e)
			if status < http.StatusInternalServerError {
				_ = c.JSON(status, e)
				return
			}

			internal(logger, err, c)
		default:
			internal(logger, err, c)
		}
	}
}

func internal(logger logrus.FieldLogger, err error, c echo.Context) {
	id := uuid.Must(uuid.NewV4()).String()

	fields := logrus.Fields{
		"error_id": id,
		"method":   c.Request().Method,
		"uri":      c.Request().RequestURI,
	}
	if user, ok := c.Get(CurrentUserContextKey).(*model.User); ok {
		fields["user_id"] = user.ID
	}
	logger.WithFields(fields).WithError(err).Error("unexpected error")

	_ = c.JSON(http.StatusInternalServerError, echo.Map{
		"error": echo.Map{
			"message": fmt.Sprintf("Unexpected error (id: %s)", id),
		},
	})
}
