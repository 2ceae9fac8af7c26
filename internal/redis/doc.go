// Package redis provides the Redis client used for login rate limiting,
// together with hooks for metrics collection and circuit breaker protection.
package redis
