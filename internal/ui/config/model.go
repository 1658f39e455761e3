// Package config is the settings form behind `taskboard config edit`.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/model"
)

// Fields holds the editable settings as form strings.
type Fields struct {
	BaseURL        string
	TimeoutSec     string
	MaxRetries     string
	PollIntervalMS string
	KeyringBackend string
	Sort           string
	LogLevel       string
	LogFile        string
}

// FieldsFrom copies the editable settings out of cfg.
func FieldsFrom(cfg *model.AppConfig) Fields {
	return Fields{
		BaseURL:        cfg.API.BaseURL,
		TimeoutSec:     strconv.Itoa(cfg.API.TimeoutSec),
		MaxRetries:     strconv.Itoa(cfg.API.MaxRetries),
		PollIntervalMS: strconv.Itoa(cfg.Session.PollIntervalMS),
		KeyringBackend: cfg.Session.KeyringBackend,
		Sort:           cfg.Display.Sort,
		LogLevel:       cfg.Log.Level,
		LogFile:        cfg.Log.File,
	}
}

// Apply validates f and writes it into cfg. cfg is untouched on error.
func (f Fields) Apply(cfg *model.AppConfig) error {
	checks := []struct {
		value string
		check func(string) error
	}{
		{f.BaseURL, validateURL},
		{f.TimeoutSec, validatePositive("Timeout")},
		{f.MaxRetries, validateNumber("Max retries")},
		{f.PollIntervalMS, validatePositive("Poll interval")},
		{f.KeyringBackend, validateBackend},
		{f.Sort, validateSort},
		{f.LogLevel, validateLevel},
	}
	for _, c := range checks {
		if err := c.check(c.value); err != nil {
			return err
		}
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(f.BaseURL), "/")
	cfg.API.TimeoutSec, _ = strconv.Atoi(f.TimeoutSec)
	cfg.API.MaxRetries, _ = strconv.Atoi(f.MaxRetries)
	cfg.Session.PollIntervalMS, _ = strconv.Atoi(f.PollIntervalMS)
	cfg.Session.KeyringBackend = f.KeyringBackend
	cfg.Display.Sort = f.Sort
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(f.LogLevel))
	cfg.Log.File = strings.TrimSpace(f.LogFile)
	return nil
}

// NewForm builds the settings form bound to f.
func NewForm(f *Fields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Platform task API (e.g., https://lms.example.com/api)").
				Placeholder("http://localhost:8080").
				Value(&f.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&f.TimeoutSec).
				Validate(validatePositive("Timeout")),
			huh.NewInput().
				Title("Retries on 429").
				Value(&f.MaxRetries).
				Validate(validateNumber("Max retries")),
		).Title("Task API"),
		huh.NewGroup(
			huh.NewInput().
				Title("Session poll interval (ms)").
				Description("How often the board notices login and logout").
				Value(&f.PollIntervalMS).
				Validate(validatePositive("Poll interval")),
			huh.NewSelect[string]().
				Title("Credential store").
				Options(
					huh.NewOption("System keyring", ""),
					huh.NewOption("Encrypted file", "file"),
				).
				Value(&f.KeyringBackend),
		).Title("Session"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lane order").
				Options(
					huh.NewOption("Recently updated first", "updated"),
					huh.NewOption("Recently created first", "created"),
				).
				Value(&f.Sort),
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&f.LogLevel),
			huh.NewInput().
				Title("Log file").
				Description("Empty logs to stderr; the board discards logs without a file").
				Value(&f.LogFile),
		).Title("Display & logging"),
	)
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("URL must include http(s) scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validateNumber(fieldName string) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a whole number", fieldName)
		}
		return nil
	}
}

func validatePositive(fieldName string) func(string) error {
	number := validateNumber(fieldName)
	return func(s string) error {
		if err := number(s); err != nil {
			return err
		}
		if n, _ := strconv.Atoi(strings.TrimSpace(s)); n == 0 {
			return fmt.Errorf("%s must be greater than zero", fieldName)
		}
		return nil
	}
}

func validateBackend(s string) error {
	if s != "" && s != "file" {
		return fmt.Errorf("unknown credential store %q", s)
	}
	return nil
}

func validateSort(s string) error {
	if s != "updated" && s != "created" {
		return fmt.Errorf("lane order must be updated or created, got %q", s)
	}
	return nil
}

func validateLevel(s string) error {
	if _, err := logrus.ParseLevel(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}
