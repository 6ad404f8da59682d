package auth

import (
	"context"
)

type contextKey string

var (
	userClaimsKey  contextKey = "user_claims"
	requestIDKey   contextKey = "request_id"
	requestInfoKey contextKey = "request_info"
)

func SetUserClaims(ctx context.Context, claims UserClaims) context.Context {
	if info := GetRequestInfo(ctx); info != nil && claims != nil {
		info.UserID = claims.UserID()
	}
	return context.WithValue(ctx, userClaimsKey, claims)
}

func GetUserClaims(ctx context.Context) UserClaims {
	val := ctx.Value(userClaimsKey)
	if claims, ok := val.(UserClaims); ok {
		return claims
	}
	return nil
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestInfo is filled in while the request travels down the chain and read
// back by the outer logging middleware once the handler returns.
type RequestInfo struct {
	UserID uint
}

func WithRequestInfo(ctx context.Context) (context.Context, *RequestInfo) {
	info := &RequestInfo{}
	return context.WithValue(ctx, requestInfoKey, info), info
}

func GetRequestInfo(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(requestInfoKey).(*RequestInfo)
	return info
}
