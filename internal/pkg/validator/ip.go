package validator

import (
	"net"
	"strings"
)

const (
	// SessionHeader lets a browser tab identify itself across requests
	SessionHeader = "X-Session-ID"

	anonymousSession = "anonymous"
	maxSessionLength = 128
)

// IsValidIP 验证 IP 地址格式（支持 IPv4 和 IPv6）
func IsValidIP(ip string) bool {
	if ip == "" {
		return false
	}
	return net.ParseIP(ip) != nil
}

// NormalizeIP 规范化 IP 地址
// 移除 IPv6 的 zone identifier (例如 fe80::1%eth0 -> fe80::1)
func NormalizeIP(ip string) string {
	if idx := strings.IndexByte(ip, '%'); idx != -1 {
		ip = ip[:idx]
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	return ip
}

// SessionKey identifies the caller for the search busy guard: the session
// header when it is usable, else the normalized client IP.
func SessionKey(header, clientIP string) string {
	header = strings.TrimSpace(header)
	if header != "" && len(header) <= maxSessionLength && isPrintable(header) {
		return "sid:" + header
	}
	if ip := NormalizeIP(strings.TrimSpace(clientIP)); IsValidIP(ip) {
		return "ip:" + ip
	}
	return anonymousSession
}

func isPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}
