package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userNameKey    contextKey = "user_name"
	tokenPrefixKey contextKey = "token_prefix"
)

func SetUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userNameKey, name)
}

func GetUserName(r *http.Request) (string, bool) {
	name, ok := r.Context().Value(userNameKey).(string)
	return name, ok
}

func setTokenPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, tokenPrefixKey, prefix)
}

func getTokenPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(tokenPrefixKey).(string)
	return prefix, ok
}
