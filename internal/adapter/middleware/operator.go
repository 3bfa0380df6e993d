package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dealdesk/pkg/id"
)

// HeaderOperatorID carries the caller's identity. Authentication happens
// upstream; this service only checks the shape.
const HeaderOperatorID = "Ax-Operator-Id"

const ctxKeyOperatorID = "operator_id"

func operatorFromHeader(r *http.Request) (string, string) {
	op := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderOperatorID)))
	if op == "" {
		return "", "missing " + HeaderOperatorID
	}
	if !id.Valid(op) {
		return "", "invalid " + HeaderOperatorID
	}
	return op, ""
}

// RequireOperator rejects requests without a well-formed operator header
// and stores the operator on the context.
func RequireOperator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			op, msg := operatorFromHeader(c.Request())
			if msg != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
			}
			c.Set(ctxKeyOperatorID, op)
			return next(c)
		}
	}
}

// OperatorID returns the operator stored by RequireOperator, or "".
func OperatorID(c echo.Context) string {
	op, _ := c.Get(ctxKeyOperatorID).(string)
	return op
}
