package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ACCESSO"

	ModeEnv     = "ACCESSO_MODE"
	DefaultMode = "development"

	APIPublic = "public"
	APIAdmin  = "admin"

	AdapterPostgres = "postgres"
	AdapterMemory   = "memory"
)

type Config struct {
	Mode string `mapstructure:"-"`
	API  string `mapstructure:"-"`

	Debug            bool   `mapstructure:"debug"`
	LogFormat        string `mapstructure:"log_format"`
	UseOpenTelemetry bool   `mapstructure:"use_opentelemetry"`

	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cookies    CookiesConfig    `mapstructure:"cookies"`
	SendGrid   SendGridConfig   `mapstructure:"sendgrid"`
	Accesso    AccessoConfig    `mapstructure:"accesso"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Workers sizes the database pool, one connection per worker.
	Workers         int           `mapstructure:"workers"`
	Backlog         int           `mapstructure:"backlog"`
	KeepAlive       time.Duration `mapstructure:"keep_alive"`
	ClientShutdown  time.Duration `mapstructure:"client_shutdown"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type DatabaseConfig struct {
	Adapter  string `mapstructure:"adapter"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	PoolSize int    `mapstructure:"pool_size"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN renders the lib/pq URL form.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Database,
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type CookiesConfig struct {
	Name      string `mapstructure:"name"`
	AdminName string `mapstructure:"admin_name"`
	Path      string `mapstructure:"path"`
	Secure    bool   `mapstructure:"secure"`
	HTTPOnly  bool   `mapstructure:"http_only"`
}

type SendGridConfig struct {
	APIKey                string `mapstructure:"api_key"`
	SenderEmail           string `mapstructure:"sender_email"`
	Enabled               bool   `mapstructure:"enabled"`
	TemplateID            string `mapstructure:"template_id"`
	ApplicationHost       string `mapstructure:"application_host"`
	EmailConfirmURLPrefix string `mapstructure:"email_confirm_url_prefix"`
}

type AccessoConfig struct {
	URL             string `mapstructure:"url"`
	ClientID        string `mapstructure:"client_id"`
	ClientSecret    string `mapstructure:"client_secret"`
	RedirectBackURL string `mapstructure:"redirect_back_url"`
	SSLValidate     bool   `mapstructure:"ssl_validate"`
}

type HTTPClientConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoadOptions struct {
	// Dir holds default.yaml, <mode>.yaml and <api>.yaml. Missing files are skipped.
	Dir string
	// Mode overrides ACCESSO_MODE.
	Mode string
	API  string
	// EnvFile is loaded into the process environment first when present.
	EnvFile string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "json")
	v.SetDefault("use_opentelemetry", false)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9005)
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.backlog", 2048)
	v.SetDefault("server.keep_alive", "75s")
	v.SetDefault("server.client_shutdown", "5s")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.request_timeout", "30s")

	v.SetDefault("database.adapter", AdapterPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "accesso")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "accesso")
	v.SetDefault("database.pool_size", 8)
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("cookies.name", "session-token")
	v.SetDefault("cookies.admin_name", "admin-session-token")
	v.SetDefault("cookies.path", "/")
	v.SetDefault("cookies.secure", true)
	v.SetDefault("cookies.http_only", true)

	v.SetDefault("sendgrid.api_key", "")
	v.SetDefault("sendgrid.sender_email", "")
	v.SetDefault("sendgrid.enabled", false)
	v.SetDefault("sendgrid.template_id", "")
	v.SetDefault("sendgrid.application_host", "")
	v.SetDefault("sendgrid.email_confirm_url_prefix", "")

	v.SetDefault("accesso.url", "")
	v.SetDefault("accesso.client_id", "")
	v.SetDefault("accesso.client_secret", "")
	v.SetDefault("accesso.redirect_back_url", "")
	v.SetDefault("accesso.ssl_validate", true)

	v.SetDefault("http_client.timeout", "10s")
}

// Load layers defaults, config files and ACCESSO_ prefixed environment
// variables, later sources winning.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	mode := opts.Mode
	if mode == "" {
		mode = os.Getenv(ModeEnv)
	}
	if mode == "" {
		mode = DefaultMode
	}
	api := opts.API
	if api == "" {
		api = APIPublic
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	for _, name := range []string{"default", mode, api} {
		path := filepath.Join(opts.Dir, name+".yaml")
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Mode = mode
	cfg.API = api

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.Workers <= 0 {
		errs = append(errs, errors.New("server.workers must be positive"))
	}

	switch c.Database.Adapter {
	case AdapterPostgres:
		if c.Database.Host == "" || c.Database.Database == "" {
			errs = append(errs, errors.New("database.host and database.database are required"))
		}
	case AdapterMemory:
	default:
		errs = append(errs, fmt.Errorf("database.adapter %q is not one of %s, %s", c.Database.Adapter, AdapterPostgres, AdapterMemory))
	}

	if c.Cookies.Name == "" || c.Cookies.AdminName == "" {
		errs = append(errs, errors.New("cookies.name and cookies.admin_name are required"))
	}
	if c.Cookies.Name == c.Cookies.AdminName {
		errs = append(errs, errors.New("cookies.name and cookies.admin_name must differ"))
	}

	if c.SendGrid.Enabled {
		if c.SendGrid.APIKey == "" || c.SendGrid.SenderEmail == "" || c.SendGrid.TemplateID == "" {
			errs = append(errs, errors.New("sendgrid.api_key, sendgrid.sender_email and sendgrid.template_id are required when sendgrid is enabled"))
		}
	}

	if c.Accesso.URL != "" {
		if u, err := url.ParseRequestURI(c.Accesso.URL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("accesso.url %q is not an absolute url", c.Accesso.URL))
		}
	}
	if c.API == APIAdmin && (c.Accesso.URL == "" || c.Accesso.ClientID == "") {
		errs = append(errs, errors.New("accesso.url and accesso.client_id are required for the admin api"))
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log_format %q is not one of json, console", c.LogFormat))
	}

	return errors.Join(errs...)
}
