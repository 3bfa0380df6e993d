package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireOperator(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/whoami", func(c echo.Context) error {
		seen = OperatorID(c)
		return c.NoContent(http.StatusNoContent)
	}, RequireOperator())

	tests := []struct {
		name   string
		header string
		code   int
		want   string
	}{
		{"valid", strings.Repeat("a", 32), http.StatusNoContent, strings.Repeat("a", 32)},
		{"uppercase is normalized", " " + strings.Repeat("AB", 16) + " ", http.StatusNoContent, strings.Repeat("ab", 16)},
		{"missing", "", http.StatusBadRequest, ""},
		{"short", "abc", http.StatusBadRequest, ""},
		{"non hex", strings.Repeat("g", 32), http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			hdr := map[string]string{}
			if tt.header != "" {
				hdr[HeaderOperatorID] = tt.header
			}
			rec := doReq(t, e, http.MethodGet, "/whoami", nil, hdr)
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.code, rec.Body.String())
			}
			if seen != tt.want {
				t.Fatalf("operator = %q, want %q", seen, tt.want)
			}
		})
	}
}

func TestOperatorID_Unset(t *testing.T) {
	e := echo.New()
	c := e.NewContext(nil, nil)
	if got := OperatorID(c); got != "" {
		t.Fatalf("want empty operator, got %q", got)
	}
}
