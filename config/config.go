package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// ErrConfigMissing means no configuration file was found at the
	// resolved location.
	ErrConfigMissing = errors.New("config file not found")
	// ErrCredentialsInvalid means the application token is absent or too
	// short to be real; the operator has to complete the authorize flow.
	ErrCredentialsInvalid = errors.New("application token missing or invalid")
)

// Config holds everything one backup run needs. Loaded once at startup,
// never mutated afterwards.
type Config struct {
	Key              string
	ApplicationToken string
	Timezone         string
	// Location is Timezone resolved; datetime filename suffixes are
	// formatted in it instead of mutating any process-wide default.
	Location *time.Location
	Proxy    string // host:port, empty when direct
	Path     string // destination root directory

	// FilenameAppendDatetime is a Go time layout appended to each backup
	// filename; empty disables the suffix.
	FilenameAppendDatetime string

	BackupClosedBoards          bool
	BackupAllOrganizationBoards bool
	BackupAttachments           bool

	IgnoreBoards     []string // deny-list of board names
	BoardsToDownload []string // allow-list of board names, empty = all

	Manifest       bool // record archived boards in a local sqlite manifest
	RequestTimeout time.Duration
}

// AuthorizeURL is where the operator obtains a read-only, never-expiring
// application token for the given API key.
func AuthorizeURL(key string) string {
	return fmt.Sprintf(
		"https://trello.com/1/authorize?key=%s&name=My+Trello+Backup&expiration=never&response_type=token",
		url.QueryEscape(key))
}

// Load reads the configuration file at path, or config.toml in the working
// directory when path is empty. TRELLO_KEY and TRELLO_APPLICATION_TOKEN
// environment variables override the file's credentials.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		path = "config.toml"
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	v.SetDefault("manifest", true)
	v.SetEnvPrefix("trello")
	_ = v.BindEnv("key")
	_ = v.BindEnv("application_token")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s - duplicate config.example.toml and fill in your details", ErrConfigMissing, path)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{
		Key:                         v.GetString("key"),
		ApplicationToken:            strings.TrimSpace(v.GetString("application_token")),
		Timezone:                    v.GetString("timezone"),
		Proxy:                       v.GetString("proxy"),
		Path:                        v.GetString("path"),
		FilenameAppendDatetime:      v.GetString("filename_append_datetime"),
		BackupClosedBoards:          v.GetBool("backup_closed_boards"),
		BackupAllOrganizationBoards: v.GetBool("backup_all_organization_boards"),
		BackupAttachments:           v.GetBool("backup_attachments"),
		IgnoreBoards:                v.GetStringSlice("ignore_boards"),
		BoardsToDownload:            v.GetStringSlice("boards_to_download"),
		Manifest:                    v.GetBool("manifest"),
	}

	if len(cfg.ApplicationToken) < 30 {
		authorize := AuthorizeURL(cfg.Key)
		zap.L().Info("Go to this URL with your web browser to authorize your Trello backups to run",
			zap.String("url", authorize))
		return nil, fmt.Errorf("%w: visit %s to obtain one", ErrCredentialsInvalid, authorize)
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
		zap.L().Warn("No timezone set in config, using UTC", zap.String("config", path))
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q in config %s: %w", cfg.Timezone, path, err)
	}
	cfg.Location = loc

	if cfg.Path == "" {
		return nil, fmt.Errorf("config %s: path (destination directory) is required", path)
	}

	if timeout := v.GetString("request_timeout"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid request_timeout %q in config %s: %w", timeout, path, err)
		}
		cfg.RequestTimeout = d
	}

	return cfg, nil
}
