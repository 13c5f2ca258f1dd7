package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"192.168.1.1", "192.168.1.1"},
		{"fe80::1%eth0", "fe80::1"},
		{"2001:DB8:0:0:0:0:0:1", "2001:db8::1"},
		{"not-an-ip", "not-an-ip"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeIP(tt.in))
		})
	}
}

func TestSessionKey(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		clientIP string
		want     string
	}{
		{"header wins", "tab-1", "10.0.0.1", "sid:tab-1"},
		{"trimmed header", "  tab-1 ", "", "sid:tab-1"},
		{"ip fallback", "", "10.0.0.1", "ip:10.0.0.1"},
		{"ipv6 zone", "", "fe80::1%eth0", "ip:fe80::1"},
		{"header with spaces ignored", "a b", "10.0.0.2", "ip:10.0.0.2"},
		{"oversized header ignored", strings.Repeat("x", 200), "10.0.0.3", "ip:10.0.0.3"},
		{"nothing usable", "", "garbage", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SessionKey(tt.header, tt.clientIP))
		})
	}
}
