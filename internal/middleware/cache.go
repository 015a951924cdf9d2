package middleware

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kolade/campus-election/internal/config"
)

// SkipCacheKey is the context key a handler sets (to true) to keep
// the current response out of the cache. The results handler uses it
// whenever visibility is not "live": those responses either depend on
// the caller's role or must stop being served the moment an admin
// hides results, so a TTL's worth of staleness is not acceptable.
const SkipCacheKey = "cache_skip"

// captureWriter buffers the response so it can be stored in Redis
// after the handler runs.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// NewRedisCache returns a middleware that serves cached responses
// for the configured HTTP methods. Only 2xx responses are stored.
// Used on the public results endpoint, where many identical reads
// arrive while an election is live. When rdb is nil the middleware
// is a no-op.
func NewRedisCache(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rdb == nil || !cfg.Enabled || !cfg.Methods[c.Request().Method] {
				return next(c)
			}

			key := cacheKeyFrom(c, cfg.Prefix)

			ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
			cached, err := rdb.Get(ctx, key).Bytes()
			cancel()
			if err == nil {
				if status, hdr, body, derr := decodePayload(cached); derr == nil {
					for k, v := range hdr {
						c.Response().Header().Set(k, v)
					}
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(status, hdr["Content-Type"], body)
				}
			}

			c.Response().Header().Set("X-Cache", "MISS")
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw

			if err := next(c); err != nil {
				return err
			}

			if skip, _ := c.Get(SkipCacheKey).(bool); skip {
				return nil
			}
			if cw.status < 200 || cw.status >= 300 || cw.buf.Len() > cfg.MaxBodyBytes {
				return nil
			}

			payload, err := encodePayload(cw.status, map[string]string{
				"Content-Type": c.Response().Header().Get("Content-Type"),
			}, cw.buf.Bytes())
			if err != nil {
				return nil
			}

			sctx, scancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer scancel()
			_ = rdb.SetEx(sctx, key, payload, cfg.TTL).Err()
			return nil
		}
	}
}

func cacheKeyFrom(c echo.Context, prefix string) string {
	req := c.Request()
	return fmt.Sprintf("%s:%s:%s?%s", prefix, req.Method, req.URL.Path, req.URL.RawQuery)
}

// encodePayload packs a response as [4B status][4B header length]
// [header JSON][body] so status and headers survive the round trip.
func encodePayload(status int, hdr map[string]string, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	out = append(out, hdrJSON...)
	out = append(out, body...)
	return out, nil
}

func decodePayload(b []byte) (int, map[string]string, []byte, error) {
	if len(b) < 8 {
		return 0, nil, nil, fmt.Errorf("cache payload too short")
	}
	status := int(binary.BigEndian.Uint32(b[0:4]))
	hdrLen := int(binary.BigEndian.Uint32(b[4:8]))
	if len(b) < 8+hdrLen {
		return 0, nil, nil, fmt.Errorf("cache payload truncated")
	}
	hdr := map[string]string{}
	if err := json.Unmarshal(b[8:8+hdrLen], &hdr); err != nil {
		return 0, nil, nil, err
	}
	return status, hdr, b[8+hdrLen:], nil
}
