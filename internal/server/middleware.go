package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	applog "github.com/darkkaiser/kaidoki-navi/pkg/log"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// panicRecovery 핸들러에서 발생한 panic을 복구하여 500 응답으로 바꿉니다.
func panicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}

					applog.WithComponentAndFields(component, applog.Fields{
						"panic":      r,
						"stack":      string(debug.Stack()),
						"path":       c.Request().URL.Path,
						"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
					}).Error("PANIC 복구")

					err = echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("%v", r))
				}
			}()
			return next(c)
		}
	}
}

// httpLogger 요청마다 한 줄의 구조화된 접근 로그를 남깁니다.
func httpLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			latency := time.Since(start)
			applog.WithComponentAndFields(component, applog.Fields{
				"method":        req.Method,
				"uri":           req.RequestURI,
				"remote_ip":     c.RealIP(),
				"user_agent":    req.UserAgent(),
				"status":        res.Status,
				"bytes_out":     strconv.FormatInt(res.Size, 10),
				"latency_human": latency.String(),
				"request_id":    res.Header().Get(echo.HeaderXRequestID),
			}).Info("HTTP 요청")

			return nil
		}
	}
}

// ipRateLimiter IP 주소별 토큰 버킷입니다.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func (i *ipRateLimiter) get(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	l, ok := i.limiters[ip]
	if !ok {
		l = rate.NewLimiter(i.rate, i.burst)
		i.limiters[ip] = l
	}
	return l
}

// rateLimiting IP 주소별 초당 요청 수를 제한합니다. 초과하면 429를 반환합니다.
func rateLimiting(requestsPerSecond float64, burst int) echo.MiddlewareFunc {
	limiter := &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !limiter.get(ip).Allow() {
				applog.WithComponentAndFields(component, applog.Fields{
					"remote_ip": ip,
					"path":      c.Request().URL.Path,
				}).Warn("Rate limit 초과")

				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요")
			}
			return next(c)
		}
	}
}
