package feed

import (
	"context"
	"time"
)

// SourceStatus is the result of probing one source.
type SourceStatus struct {
	Name    string
	Role    string
	OK      bool
	Latency time.Duration
	Err     error
}

// Probe pings the remote source (if any) and the local store.
func (s *Service) Probe(ctx context.Context) []SourceStatus {
	var out []SourceStatus
	if s.remote != nil {
		out = append(out, probe(ctx, s.remoteName, "remote", s.remote.Ping))
	}
	out = append(out, probe(ctx, SourceCache, "local", s.local.Ping))
	return out
}

func probe(ctx context.Context, name, role string, ping func(context.Context) error) SourceStatus {
	start := time.Now()
	err := ping(ctx)
	return SourceStatus{
		Name:    name,
		Role:    role,
		OK:      err == nil,
		Latency: time.Since(start),
		Err:     err,
	}
}
