package middleware

import (
	"net/http"
	"sync"
	"time"

	"medzone/internal/utils"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：附近搜索会触发数据库范围查询，流量峰值时对入口限速，避免连接池被耗尽；按环境变量开关与速率配置。
// 约束：简化实现，不做排队，超出直接返回 429；/metrics 与 /healthz 也计入同一个桶。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	tb := &TokenBucket{capacity: qps, tokens: qps, now: time.Now}
	tb.lastSec = tb.now().Unix()
	return tb
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit 使用给定桶包装处理器
func Limit(tb *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap 读取 RATE_LIMIT_ENABLED / RATE_LIMIT_QPS（缺省 200），未开启时原样返回
func Wrap(next http.Handler) http.Handler {
	if !utils.EnvBool("RATE_LIMIT_ENABLED", false) {
		return next
	}
	return Limit(NewTokenBucket(utils.EnvInt("RATE_LIMIT_QPS", 200)), next)
}
