package cache

import "fmt"

func SessionKey(tokenPrefix string) string {
	return fmt.Sprintf("session:%s", tokenPrefix)
}

func RateLimitKey(tokenPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", tokenPrefix)
}
