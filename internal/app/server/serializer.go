package server

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// serializer is the echo JSON codec backed by jsoniter
type serializer struct{}

// Serialize writes v as JSON to the response
func (serializer) Serialize(c echo.Context, v interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(v)
}

// Deserialize reads the JSON request body into v
func (serializer) Deserialize(c echo.Context, v interface{}) error {
	return json.NewDecoder(c.Request().Body).Decode(v)
}
