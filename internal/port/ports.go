// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
//
// Single-row getters and updaters return (nil, nil) when the row does not
// exist; a non-nil error always means the backend call itself failed.
// Services translate the nil into their own not-found or unauthorized
// responses.
package port

import "context"

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeletePrefix(prefix string)
}

// UserAdminInvoker calls the server-side user-deletion function, which
// removes the user's dependent rows and the auth identity in one place.
type UserAdminInvoker interface {
	DeleteUser(ctx context.Context, userID string) error
}
