package iploc

import (
	"net"
	"net/http"
	"strings"
)

// 文档注释：获取客户端 IP（附近搜索的定位来源）
// 背景：多层代理环境下，优先显式参数 ip，其次常见反向代理头，最后回退远端地址。
// 约束：头部存在伪造风险，仅用于粗定位而非鉴权；无法解析为合法 IP 的值直接跳过。
func ClientIP(r *http.Request) string {
	if q := valid(r.URL.Query().Get("ip")); q != "" {
		return q
	}
	h := r.Header
	if x := h.Get("x-forwarded-for"); x != "" {
		if ip := valid(strings.Split(x, ",")[0]); ip != "" {
			return ip
		}
	}
	for _, k := range []string{"cf-connecting-ip", "x-real-ip", "x-client-ip"} {
		if ip := valid(h.Get(k)); ip != "" {
			return ip
		}
	}
	if x := h.Get("forwarded"); x != "" {
		if i := strings.Index(strings.ToLower(x), "for="); i >= 0 {
			y := x[i+4:]
			if p := strings.IndexAny(y, ";,"); p >= 0 {
				y = y[:p]
			}
			y = strings.Trim(y, "\" []")
			if ip := valid(y); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return valid(host)
}

func valid(s string) string {
	s = strings.TrimSpace(s)
	if net.ParseIP(s) == nil {
		return ""
	}
	return s
}
