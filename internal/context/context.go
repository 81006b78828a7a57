package context

import (
	"context"
	"net/http"
)

type contextKey string

const (
	authenticatedUserIDContextKey = contextKey("authenticatedUserID")
	authenticatedRoleContextKey   = contextKey("authenticatedRole")
)

func ContextSetAuthenticatedUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), authenticatedUserIDContextKey, userID)
	return r.WithContext(ctx)
}

func ContextGetAuthenticatedUserID(r *http.Request) string {
	userID, ok := r.Context().Value(authenticatedUserIDContextKey).(string)
	if !ok {
		return ""
	}

	return userID
}

func ContextSetAuthenticatedRole(r *http.Request, role string) *http.Request {
	ctx := context.WithValue(r.Context(), authenticatedRoleContextKey, role)
	return r.WithContext(ctx)
}

func ContextGetAuthenticatedRole(r *http.Request) string {
	role, ok := r.Context().Value(authenticatedRoleContextKey).(string)
	if !ok {
		return ""
	}

	return role
}
