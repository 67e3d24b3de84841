package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Drafts    DraftsConfig    `yaml:"drafts"`
	Feed      FeedConfig      `yaml:"feed"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// CORSConfig holds CORS settings of the JSON API. Empty origins disable CORS.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	SecureCookies   bool          `yaml:"secure_cookies"   env:"SERVER_SECURE_COOKIES"   env-default:"false"`
}

// DatabaseConfig holds the primary PostgreSQL source. An empty DSN means the
// primary source is not configured.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"    env:"DATABASE_CONNECT_TIMEOUT"    env-default:"5s"`
	RealtimeChannel string        `yaml:"realtime_channel"   env:"DATABASE_REALTIME_CHANNEL"   env-default:"feed_changes"`
}

// StoreConfig holds the hosted REST fallback source.
type StoreConfig struct {
	URL               string        `yaml:"url"                 env:"STORE_URL"`
	AnonKey           string        `yaml:"anon_key"            env:"STORE_ANON_KEY"`
	Timeout           time.Duration `yaml:"timeout"             env:"STORE_TIMEOUT"             env-default:"10s"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"STORE_REQUESTS_PER_SECOND" env-default:"10"`
}

// CacheConfig holds the local SQLite store.
type CacheConfig struct {
	Path string `yaml:"path" env:"CACHE_PATH" env-default:"./journalfeed.db"`
}

// DraftsConfig holds the draft directory watcher and change marker polling.
type DraftsConfig struct {
	Dir          string        `yaml:"dir"           env:"DRAFTS_DIR"`
	PollInterval time.Duration `yaml:"poll_interval" env:"DRAFTS_POLL_INTERVAL" env-default:"2s"`
}

// FeedConfig holds presentation settings.
type FeedConfig struct {
	SiteURL        string        `yaml:"site_url"         env:"FEED_SITE_URL"         env-default:"http://localhost:8080/"`
	AuthorName     string        `yaml:"author_name"      env:"FEED_AUTHOR_NAME"      env-default:"Sean Sneed"`
	AuthorAvatar   string        `yaml:"author_avatar"    env:"FEED_AUTHOR_AVATAR"    env-default:"/static/avatar.png"`
	MaxVisibleTags int           `yaml:"max_visible_tags" env:"FEED_MAX_VISIBLE_TAGS" env-default:"3"`
	TopTags        int           `yaml:"top_tags"         env:"FEED_TOP_TAGS"         env-default:"5"`
	LoadTimeout    time.Duration `yaml:"load_timeout"     env:"FEED_LOAD_TIMEOUT"     env-default:"15s"`
	// MaxAge bounds how long a loaded collection is served before the next
	// read reloads it. Applies when the remote has no realtime channel.
	MaxAge         time.Duration `yaml:"max_age"          env:"FEED_MAX_AGE"          env-default:"30s"`
}

// AdminConfig holds the admin write API. An empty password hash disables it.
type AdminConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"    env:"ADMIN_JWT_SECRET"`
	PasswordHash string        `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
	TokenTTL     time.Duration `yaml:"token_ttl"     env:"ADMIN_TOKEN_TTL"     env-default:"12h"`
}

// Enabled reports whether admin login is configured.
func (c AdminConfig) Enabled() bool {
	return c.PasswordHash != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-visitor limits of the action endpoint.
// Zero disables limiting.
type RateLimitConfig struct {
	ActionsPerMinute int `yaml:"actions_per_minute" env:"RATELIMIT_ACTIONS_PER_MINUTE" env-default:"60"`
}
