package middlewares

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
)

type serializer struct {
	api sonic.API
}

// NewJSONSerializer returns a JSON serializer backed by sonic and compatible with encoding/json.
func NewJSONSerializer() echo.JSONSerializer {
	return &serializer{
		api: sonic.ConfigStd,
	}
}

// Serialize implements the echo.JSONSerializer interface.
func (s *serializer) Serialize(c echo.Context, i any, indent string) error {
	enc := s.api.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

// Deserialize implements the echo.JSONSerializer interface.
func (s *serializer) Deserialize(c echo.Context, i any) error {
	if err := s.api.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON payload.").SetInternal(err)
	}
	return nil
}
