package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashIP pseudonymizes a client address with a keyed HMAC. The same
// key always yields the same hash, so events from one address remain
// correlatable without the raw IP ever being stored.
func HashIP(key, ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}
