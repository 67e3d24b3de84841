// Package feed owns the in-memory journal and social collections: it loads
// them from the configured sources, keeps them current from change
// notifications and markers, and runs visitor and admin actions on them.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/journalfeed/internal/analytics"
	"github.com/heartmarshall/journalfeed/internal/domain"
	"github.com/heartmarshall/journalfeed/internal/normalize"
)

// remoteSource is a transport to the canonical store: the direct database
// client or its REST surface.
type remoteSource interface {
	List(ctx context.Context, feed domain.Feed) ([]domain.Raw, error)
	Insert(ctx context.Context, feed domain.Feed, rec domain.Raw) (domain.Raw, error)
	AdjustLikes(ctx context.Context, id string, expected, delta int) (bool, error)
	Delete(ctx context.Context, feed domain.Feed, id string) error
	Ping(ctx context.Context) error
}

// localStore is the process-local persistent store.
type localStore interface {
	List(ctx context.Context, feed domain.Feed) ([]domain.Raw, error)
	Save(ctx context.Context, feed domain.Feed, recs []domain.Raw) error
	Draft(ctx context.Context, feed domain.Feed) ([]domain.Raw, error)
	Marks(ctx context.Context, visitor string, set domain.MarkSet) (map[string]bool, error)
	HasMark(ctx context.Context, visitor string, set domain.MarkSet, id string) (bool, error)
	SetMark(ctx context.Context, visitor string, set domain.MarkSet, id string, on bool) error
	Marker(ctx context.Context, feed domain.Feed) (int64, error)
	BumpMarker(ctx context.Context, feed domain.Feed) (int64, error)
	Ping(ctx context.Context) error
}

// Source names used in logs, load errors and health output.
const (
	SourceCache = "cache"
	SourceDraft = "draft"
)

const (
	defaultLoadTimeout  = 15 * time.Second
	defaultPollInterval = 2 * time.Second
)

// Options tunes the service. Zero values take defaults.
type Options struct {
	AuthorName   string
	SiteURL      string
	TopTags      int
	PollInterval time.Duration
	LoadTimeout  time.Duration
	// MaxAge makes reads reload a collection loaded longer ago than this.
	// Zero keeps a collection until a notification or marker replaces it.
	MaxAge       time.Duration
	Now          func() time.Time
}

// Service provides feed loading, realtime updates and record actions.
type Service struct {
	remote     remoteSource
	remoteName string
	local      localStore
	norm       *normalize.Normalizer
	log        *slog.Logger
	opts       Options

	group singleflight.Group
	seq   atomic.Uint64

	mu     sync.RWMutex
	states map[domain.Feed]*feedState
}

// feedState is the current collection of one feed.
type feedState struct {
	loaded   bool
	stamp    uint64
	source   string
	loadedAt time.Time
	marker   int64
	entries  []domain.Entry
	posts    []domain.Post
}

// NewService creates a feed Service. remote may be nil when no canonical
// store is configured; the service then serves the local cache only.
func NewService(
	log *slog.Logger,
	local localStore,
	remote remoteSource,
	remoteName string,
	opts Options,
) *Service {
	if opts.TopTags <= 0 {
		opts.TopTags = analytics.DefaultTopTags
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		remote:     remote,
		remoteName: remoteName,
		local:      local,
		norm:       normalize.New(opts.Now),
		log:        log.With("service", "feed"),
		opts:       opts,
		states: map[domain.Feed]*feedState{
			domain.FeedJournal: {},
			domain.FeedSocial:  {},
		},
	}
}

// RemoteName is the name of the active canonical source, empty when none.
func (s *Service) RemoteName() string {
	if s.remote == nil {
		return ""
	}
	return s.remoteName
}

// Status describes the current collection of a feed.
type Status struct {
	Feed     domain.Feed
	Loaded   bool
	Source   string
	LoadedAt time.Time
	Count    int
}

// Status reports what is currently held for feed.
func (s *Service) Status(feed domain.Feed) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.states[feed]
	return Status{
		Feed:     feed,
		Loaded:   st.loaded,
		Source:   st.source,
		LoadedAt: st.loadedAt,
		Count:    len(st.entries) + len(st.posts),
	}
}
