package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dealdesk/internal/infrastructure/logger"
)

const (
	// in-flight marker lifetime; a crashed handler frees the key after this
	provisionalLockTTL = 60 * time.Second
	maxClockSkew       = 10 * time.Minute
	storeTimeout       = 2 * time.Second

	HeaderRequestID = "Ax-Request-Id"
	HeaderRequestAt = "Ax-Request-At"
	HeaderReplay    = "Ax-Idempotent-Replay"
)

// storedResponse is what lives under an idempotency key: an in-flight
// marker first, then the final status and body.
type storedResponse struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// captureWriter tees the handler's response so it can be stored.
type captureWriter struct {
	http.ResponseWriter
	body bytes.Buffer
	code int
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type axRequest struct {
	requestID  string
	requestAt  time.Time
	operatorID string
}

func abort(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// readAxRequest validates the idempotency headers. A non-empty message means
// the request must be rejected with 400.
func readAxRequest(c echo.Context) (axRequest, string) {
	req := c.Request()
	var ax axRequest

	ax.requestID = strings.TrimSpace(req.Header.Get(HeaderRequestID))
	switch {
	case ax.requestID == "":
		return ax, "missing " + HeaderRequestID
	case !validReqID(ax.requestID):
		return ax, "invalid " + HeaderRequestID + " format"
	}

	at, err := parseAxRequestAt(req.Header.Get(HeaderRequestAt))
	if err != nil {
		return ax, err.Error()
	}
	if d := nowUTC().Sub(at); d > maxClockSkew || d < -maxClockSkew {
		return ax, HeaderRequestAt + " too skewed"
	}
	ax.requestAt = at

	if ax.operatorID = OperatorID(c); ax.operatorID == "" {
		op, msg := operatorFromHeader(req)
		if msg != "" {
			return ax, msg
		}
		ax.operatorID = op
	}
	return ax, ""
}

// IdempotencyMiddleware makes mutating requests safe to retry. The key is
// method, route, operator and Ax-Request-Id; Ax-Request-At is epoch seconds,
// epoch millis, or RFC3339 with a zone, within maxClockSkew of now.
//
// A repeat with the same body replays the stored response. A repeat with a
// different body, or while the first is still running, gets 409. 5xx
// responses are not stored, so the same id may be retried.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			ax, msg := readAxRequest(c)
			if msg != "" {
				return abort(c, http.StatusBadRequest, msg)
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			hash := bodyHash(body)

			key := buildKey(req.Method, c.Path(), ax.operatorID, ax.requestID)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			claimed, err := provisionalSet(ctx, rdb, key, storedResponse{
				InProgress:  true,
				BodySHA256:  hash,
				RequestID:   ax.requestID,
				RequestAtMS: ax.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				log.Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return abort(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !claimed {
				prev, err := loadEntry(ctx, rdb, key)
				if err != nil {
					log.Warn("idempotency entry load failed", zap.String("key", key), zap.Error(err))
				}
				return replay(c, prev, hash)
			}

			w := &captureWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be done; finish on a fresh one
			done, cancelDone := context.WithTimeout(context.Background(), storeTimeout)
			defer cancelDone()
			if w.code >= http.StatusInternalServerError {
				if err := release(done, rdb, key); err != nil {
					log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			err = saveFinal(done, rdb, key, storedResponse{
				Code:        w.code,
				Body:        w.body.Bytes(),
				BodySHA256:  hash,
				RequestID:   ax.requestID,
				RequestAtMS: ax.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}, ttl)
			if err != nil {
				log.Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}

func replay(c echo.Context, prev storedResponse, hash string) error {
	if prev.BodySHA256 != "" && prev.BodySHA256 != hash {
		return abort(c, http.StatusConflict, HeaderRequestID+" reused with different body")
	}
	if prev.InProgress || prev.Code == 0 || len(prev.Body) == 0 {
		return abort(c, http.StatusConflict, "request is already in progress")
	}
	c.Response().Header().Set(HeaderReplay, "true")
	return c.Blob(prev.Code, echo.MIMEApplicationJSON, prev.Body)
}
