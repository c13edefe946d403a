// 包 utils：连接工具与环境变量读取，统一缺省值与解析失败的回退策略
package utils

import (
	"os"
	"strconv"

	"medzone/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromEnv：从环境变量打开 Redis 客户端，支持 REDIS_DB 选择
// 约束：REDIS_ENABLE 非真时返回 nil，调用方按“无缓存”处理；REDIS_DB 解析失败时回退到 0
func OpenRedisFromEnv() *redis.Client {
	if !EnvBool("REDIS_ENABLE", false) {
		return nil
	}
	addr := Env("REDIS_HOST", "127.0.0.1") + ":" + Env("REDIS_PORT", "6379")
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, _ := strconv.Atoi(v); n >= 0 {
			db = n
		}
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
