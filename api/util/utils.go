package apiutil

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CloudflareIPHeader = "CF-Connecting-IP"
	ClientIDKey        = "clientID"
	UnknownClient      = "unknown"
)

// GetPlatformAddress returns the client address as reported by the hosting
// platform: the platformHeader value when one is configured, otherwise the
// connection's remote address
func GetPlatformAddress(c *gin.Context, platformHeader string) string {
	if platformHeader != "" {
		ip := c.Request.Header.Get(platformHeader)
		// X-Forwarded-For style lists carry the client first
		ipList := strings.Split(ip, ",")
		return strings.TrimSpace(ipList[0])
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return ""
	}
	return ip
}

// GetClientID resolves the rate limit key of the request:
// platform address, then CF-Connecting-IP, then "unknown"
func GetClientID(c *gin.Context, platformHeader string) string {
	if ip := GetPlatformAddress(c, platformHeader); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(c.Request.Header.Get(CloudflareIPHeader)); ip != "" {
		return ip
	}
	return UnknownClient
}

// ClientIDFromContext returns the id stored by interceptors.ClientIDMiddleware
func ClientIDFromContext(c *gin.Context) string {
	if id := c.GetString(ClientIDKey); id != "" {
		return id
	}
	return UnknownClient
}
