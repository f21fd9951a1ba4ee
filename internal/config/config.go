package config // package config loads application configuration from environment variables

import (
    "fmt"
    "os"
    "strconv"
    "time"

    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog/log"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable; see Parse for the names and defaults.
type Config struct {
    Env            string // application environment (e.g. "development", "production")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    StaffName     string // bootstrap staff account; skipped when email or password is empty
    StaffEmail    string
    StaffPassword string

    RabbitURL      string        // AMQP URL; events are disabled when empty
    ReservationLog string        // file the event consumer appends to
    VenueConfig    string        // optional YAML venue catalogue
    TokenPurgeCron string        // crontab for the refresh token purge job
    ShutdownWait   time.Duration // grace period for in-flight requests

    SeedDemo  bool  // seed demo reservations at server startup
    DemoSeed  int64 // PRNG seed for demo data
    DemoCount int   // number of demo reservations to attempt
}

// Development reports whether the app runs in a development environment.
func (c Config) Development() bool {
    return c.Env == "dev" || c.Env == "development" || c.Env == "local"
}

// Load reads the configuration and exits the process when a required
// variable is missing or malformed.
func Load() Config {
    cfg, err := Parse()
    if err != nil {
        log.Fatal().Err(err).Msg("invalid configuration")
    }
    return cfg
}

// Parse reads configuration values from environment variables.  The first
// missing or malformed required value is reported as an error.
func Parse() (Config, error) {
    var r reader
    cfg := Config{
        Env:            r.must("APP_ENV"),
        Port:           r.must("APP_PORT"),
        DBUser:         r.must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"), // empty allowed
        DBHost:         r.must("DB_HOST"),
        DBPort:         r.must("DB_PORT"),
        DBName:         r.must("DB_NAME"),
        JWTSecret:      r.must("JWT_SECRET"),
        AccessTTLMin:   r.intOr("ACCESS_TOKEN_TTL_MIN", 180),
        RefreshTTLDays: r.intOr("REFRESH_TOKEN_TTL_DAYS", 7),
        BcryptCost:     r.intOr("BCRYPT_COST", 10),
        StaffName:      envStr("STAFF_NAME", "Venue Staff"),
        StaffEmail:     os.Getenv("STAFF_EMAIL"),
        StaffPassword:  os.Getenv("STAFF_PASSWORD"),
        RabbitURL:      os.Getenv("RABBITMQ_URL"),
        ReservationLog: envStr("RESERVATION_LOG", "logs/reservations.log"),
        VenueConfig:    os.Getenv("VENUE_CONFIG"),
        TokenPurgeCron: envStr("TOKEN_PURGE_CRON", "0 3 * * *"),
        ShutdownWait:   envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
        SeedDemo:       envBool("SEED_DEMO", false),
        DemoSeed:       int64(envInt("DUMMY_SEED", 20240101)),
        DemoCount:      envInt("DUMMY_COUNT", 18),
    }
    if r.err != nil {
        return Config{}, r.err
    }
    if _, err := cron.ParseStandard(cfg.TokenPurgeCron); err != nil {
        return Config{}, fmt.Errorf("invalid TOKEN_PURGE_CRON %q: %w", cfg.TokenPurgeCron, err)
    }
    if cfg.AccessTTLMin <= 0 || cfg.RefreshTTLDays <= 0 {
        return Config{}, fmt.Errorf("token TTLs must be positive")
    }
    return cfg, nil
}

// reader remembers the first error so Parse can build the struct in one
// literal.
type reader struct{ err error }

// must retrieves the value of a required environment variable.
func (r *reader) must(key string) string {
    v, ok := os.LookupEnv(key)
    if (!ok || v == "") && r.err == nil {
        r.err = fmt.Errorf("missing required env var: %s", key)
    }
    return v
}

// intOr is like envInt but a malformed value is an error rather than
// silently replaced by the default.
func (r *reader) intOr(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil && r.err == nil {
        r.err = fmt.Errorf("invalid int for %s: %q", key, s)
    }
    return n
}
