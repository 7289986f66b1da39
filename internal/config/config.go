// Package config loads the run configuration: defaults, an optional YAML file and
// the credentials taken from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/naka-gawa/readme-stats/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	// UserEnv and TokenEnv name the environment variables holding the credentials.
	UserEnv  = "GITHUB_USER"
	TokenEnv = "GITHUB_TOKEN"

	DefaultStartMarker = "<!-- STATS:START -->"
	DefaultEndMarker   = "<!-- STATS:END -->"
)

// ErrMissingCredentials is returned when the login or the token is not set.
var ErrMissingCredentials = errors.New("missing credentials")

var validate = validator.New()

// Config holds every tunable of a run.
type Config struct {
	// GraphQLURL overrides the GraphQL endpoint, e.g. for GitHub Enterprise.
	GraphQLURL string `yaml:"graphql_url" validate:"omitempty,url"`
	// RESTURL overrides the REST base URL used for repository documents.
	RESTURL string `yaml:"rest_url" validate:"omitempty,url"`

	// PageSize caps each partition. No further pages are ever requested.
	PageSize     int                `yaml:"page_size" validate:"gte=1,lte=100"`
	LanguageCap  int                `yaml:"language_cap" validate:"gte=1,lte=100"`
	TopLanguages int                `yaml:"top_languages" validate:"gte=1,lte=20"`
	Partitions   []domain.Partition `yaml:"partitions" validate:"min=1,max=4"`
	Parallel     bool               `yaml:"parallel"`

	Document Document `yaml:"document"`
	Report   Report   `yaml:"report"`
}

// Document describes where the marked region lives.
type Document struct {
	File        string `yaml:"file" validate:"required_without=Repo"`
	Repo        string `yaml:"repo" validate:"omitempty,contains=/"`
	Path        string `yaml:"path" validate:"required_with=Repo"`
	Branch      string `yaml:"branch"`
	Message     string `yaml:"message" validate:"required"`
	StartMarker string `yaml:"start_marker" validate:"required"`
	EndMarker   string `yaml:"end_marker" validate:"required,nefield=StartMarker"`
}

// Report selects which sections are rendered.
type Report struct {
	Repositories  bool `yaml:"repositories"`
	Contributions bool `yaml:"contributions"`
	Community     bool `yaml:"community"`
	Languages     bool `yaml:"languages"`
}

// Credentials identify the account and authorize the API calls.
type Credentials struct {
	User  string
	Token string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		PageSize:     100,
		LanguageCap:  10,
		TopLanguages: 6,
		Partitions:   append([]domain.Partition(nil), domain.AllPartitions...),
		Document: Document{
			File:        "README.md",
			Path:        "README.md",
			Message:     "Update README stats",
			StartMarker: DefaultStartMarker,
			EndMarker:   DefaultEndMarker,
		},
		Report: Report{
			Repositories:  true,
			Contributions: true,
			Community:     true,
			Languages:     true,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path yields the defaults. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RepoOwnerName splits Document.Repo into owner and name.
func (d Document) RepoOwnerName() (string, string) {
	owner, name, _ := strings.Cut(d.Repo, "/")
	return owner, name
}

// CredentialsFromEnv reads the login and token through getenv.
// Both are required.
func CredentialsFromEnv(getenv func(string) string) (Credentials, error) {
	creds := Credentials{
		User:  strings.TrimSpace(getenv(UserEnv)),
		Token: strings.TrimSpace(getenv(TokenEnv)),
	}
	var missing []string
	if creds.User == "" {
		missing = append(missing, UserEnv)
	}
	if creds.Token == "" {
		missing = append(missing, TokenEnv)
	}
	if len(missing) > 0 {
		return creds, fmt.Errorf("%w: %s not set", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return creds, nil
}
