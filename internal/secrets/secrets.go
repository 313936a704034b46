// Package secrets resolves named secret references for descriptor fetching
// and notifier authentication. Credentials never appear inline in
// configuration; only references do.
package secrets

import (
	"os"
	"strings"
)

// Resolver looks up a secret by reference. The second return reports whether
// the reference resolved; a missing secret is not an error at this layer.
type Resolver interface {
	Resolve(ref string) (string, bool)
}

// EnvResolver reads secrets from environment variables. A reference
// "billing_token" with prefix "SPECSYNC_SECRET_" resolves from
// SPECSYNC_SECRET_BILLING_TOKEN.
type EnvResolver struct {
	Prefix string
}

// NewEnvResolver creates an environment-backed resolver.
func NewEnvResolver(prefix string) *EnvResolver {
	return &EnvResolver{Prefix: prefix}
}

// Resolve implements Resolver.
func (r *EnvResolver) Resolve(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	key := r.Prefix + strings.ToUpper(strings.ReplaceAll(ref, "-", "_"))
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// StaticResolver serves secrets from a fixed map (tests and embedding hosts).
type StaticResolver map[string]string

// Resolve implements Resolver.
func (r StaticResolver) Resolve(ref string) (string, bool) {
	value, ok := r[ref]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
