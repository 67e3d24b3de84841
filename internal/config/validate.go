package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// MemoryCachePath keeps the local store in memory.
const MemoryCachePath = ":memory:"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be 1-65535 (got %d)", c.Server.Port))
	}

	if c.Database.DSN == "" && c.Store.URL == "" && !c.Cache.exists() {
		errs = append(errs, errors.New("no source configured: set database.dsn, store.url or an existing cache.path"))
	}
	if c.Database.DSN != "" && c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("database.min_conns (%d) exceeds max_conns (%d)", c.Database.MinConns, c.Database.MaxConns))
	}

	if c.Store.URL != "" {
		if u, err := url.Parse(c.Store.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("store.url %q is not an absolute URL", c.Store.URL))
		}
		if c.Store.AnonKey == "" {
			errs = append(errs, errors.New("store.anon_key is required when store.url is set"))
		}
	}
	if c.Store.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("store.requests_per_second must be >= 0 (got %v)", c.Store.RequestsPerSecond))
	}

	if strings.TrimSpace(c.Cache.Path) == "" {
		errs = append(errs, errors.New("cache.path is required"))
	}
	if c.Drafts.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("drafts.poll_interval must be > 0 (got %s)", c.Drafts.PollInterval))
	}

	if c.Feed.MaxVisibleTags < 1 {
		errs = append(errs, fmt.Errorf("feed.max_visible_tags must be >= 1 (got %d)", c.Feed.MaxVisibleTags))
	}
	if c.Feed.TopTags < 1 {
		errs = append(errs, fmt.Errorf("feed.top_tags must be >= 1 (got %d)", c.Feed.TopTags))
	}
	if c.Feed.MaxAge < 0 {
		errs = append(errs, fmt.Errorf("feed.max_age must be >= 0 (got %s)", c.Feed.MaxAge))
	}

	if c.Admin.Enabled() {
		if len(c.Admin.JWTSecret) < 32 {
			errs = append(errs, fmt.Errorf("admin.jwt_secret must be at least 32 characters (got %d)", len(c.Admin.JWTSecret)))
		}
		if !strings.HasPrefix(c.Admin.PasswordHash, "$2") {
			errs = append(errs, errors.New("admin.password_hash must be a bcrypt hash"))
		}
		if c.Admin.TokenTTL <= 0 {
			errs = append(errs, fmt.Errorf("admin.token_ttl must be > 0 (got %s)", c.Admin.TokenTTL))
		}
	}

	if c.RateLimit.ActionsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("ratelimit.actions_per_minute must be >= 0 (got %d)", c.RateLimit.ActionsPerMinute))
	}

	return errors.Join(errs...)
}

func (c CacheConfig) exists() bool {
	if c.Path == MemoryCachePath {
		return false
	}
	_, err := os.Stat(c.Path)
	return err == nil
}
