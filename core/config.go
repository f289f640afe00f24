package core

import (
	"fmt"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zoneinfo for Config.Timezone

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Backends
const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendInMemory  = "inmem"
)

type (
	Config struct {
		Env      string
		Build    string
		AppName  string
		Debug    bool
		TestMode bool

		SecretKey          string
		JWTExpirationDelta time.Duration
		Timezone           string
		Backend            string
		LocalStorePath     string

		RollbarToken     string
		SendgridApiKey   string
		DefaultFromEmail string
		OtelEndpoint     string

		Supabase SupabaseConfig
		Database DatabaseConfig
		Server   ServerConfig
	}

	SupabaseConfig struct {
		URL     string
		AnonKey string
		Schema  string
		Timeout time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		DisableTLS bool
		Path       string // sqlite only
	}

	ServerConfig struct {
		Host            string
		Address         string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// BackendURL returns where the table service lives, for display purposes.
// Credentials are never part of it.
func (c *Config) BackendURL() string {
	switch c.Backend {
	case BackendPostgREST:
		return c.Supabase.URL
	case BackendPostgres:
		return fmt.Sprintf("postgres://%s/%s", c.Database.Address(), c.Database.Name)
	case BackendSQLite:
		return "file:" + c.Database.Path
	default:
		return "memory"
	}
}

func (c *Config) DefaultFromAddress() mail.Address {
	if addr, err := mail.ParseAddress(c.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

// Location is the time zone used to stamp record dates. Falls back to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the value of ENV (DEV by default), eg: DEV_SUPABASE_URL.
// A `config/.env.<env>` file is loaded first when it exists.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Lop Hoc")
	v.SetDefault("secretKey", "k1l0-+q2x$9v!m@p3r#t&c8w(z)a7s_n5e^b4u%h6d")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("backend", BackendPostgREST)
	v.SetDefault("localStorePath", "lophoc.local.db")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("otelEndpoint", "")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anonKey", "")
	v.SetDefault("supabase.schema", "public")
	v.SetDefault("supabase.timeout", 15*time.Second)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "lophoc")
	v.SetDefault("database.disableTLS", false)
	v.SetDefault("database.path", "lophoc.db")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:                env,
		Build:              v.GetString("build"),
		AppName:            v.GetString("appName"),
		Debug:              v.GetBool("debug"),
		TestMode:           v.GetBool("testMode"),
		SecretKey:          v.GetString("secretKey"),
		JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		Timezone:           v.GetString("timezone"),
		Backend:            strings.ToLower(v.GetString("backend")),
		LocalStorePath:     v.GetString("localStorePath"),
		RollbarToken:       v.GetString("rollbarToken"),
		SendgridApiKey:     v.GetString("sendgridApiKey"),
		DefaultFromEmail:   v.GetString("defaultFromEmail"),
		OtelEndpoint:       v.GetString("otelEndpoint"),
		Supabase: SupabaseConfig{
			URL:     strings.TrimRight(v.GetString("supabase.url"), "/"),
			AnonKey: v.GetString("supabase.anonKey"),
			Schema:  v.GetString("supabase.schema"),
			Timeout: v.GetDuration("supabase.timeout"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			Name:       v.GetString("database.name"),
			DisableTLS: v.GetBool("database.disableTLS"),
			Path:       v.GetString("database.path"),
		},
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugHost:       v.GetString("server.debugHost"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
	}

	switch conf.Backend {
	case BackendPostgREST:
		if conf.Supabase.URL == "" || conf.Supabase.AnonKey == "" {
			return nil, NewValidationError(errors.New("supabase url and anon key are required for the postgrest backend"))
		}
	case BackendPostgres, BackendSQLite, BackendInMemory:
	default:
		return nil, NewValidationError(errors.Errorf("unknown backend %q", conf.Backend))
	}
	return conf, nil
}
