package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/mfocus/internal/config"
	"github.com/theirongolddev/mfocus/internal/pipeline"
	"github.com/theirongolddev/mfocus/internal/tui/theme"
)

// SetupValues holds the fields edited by the setup form.
type SetupValues struct {
	ActivityWatchURL string
	Bucket           string
	UseOllama        bool
	OllamaURL        string
	OllamaModel      string
	StoreEnabled     bool
	UserID           string
	UTCOffset        string
	Theme            string
}

// SetupValuesFrom seeds the form from cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		ActivityWatchURL: cfg.ActivityWatch.BaseURL,
		Bucket:           cfg.ActivityWatch.Bucket,
		UseOllama:        cfg.Ollama.Enabled,
		OllamaURL:        cfg.Ollama.BaseURL,
		OllamaModel:      cfg.Ollama.Model,
		StoreEnabled:     cfg.Store.Enabled,
		UserID:           cfg.Store.UserID,
		UTCOffset:        cfg.Display.UTCOffset,
		Theme:            theme.ByName(cfg.Display.Theme).Name,
	}
}

// Apply copies the form values into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	if err := validateURL(v.ActivityWatchURL); err != nil {
		return fmt.Errorf("activitywatch url: %w", err)
	}
	if err := validateOffset(v.UTCOffset); err != nil {
		return err
	}
	cfg.ActivityWatch.BaseURL = strings.TrimRight(strings.TrimSpace(v.ActivityWatchURL), "/")
	cfg.ActivityWatch.Bucket = strings.TrimSpace(v.Bucket)
	cfg.Ollama.Enabled = v.UseOllama
	if v.UseOllama {
		if err := validateURL(v.OllamaURL); err != nil {
			return fmt.Errorf("ollama url: %w", err)
		}
		cfg.Ollama.BaseURL = strings.TrimRight(strings.TrimSpace(v.OllamaURL), "/")
		if m := strings.TrimSpace(v.OllamaModel); m != "" {
			cfg.Ollama.Model = m
		}
	}
	cfg.Store.Enabled = v.StoreEnabled
	cfg.Store.UserID = strings.TrimSpace(v.UserID)
	cfg.Display.UTCOffset = strings.TrimSpace(v.UTCOffset)
	cfg.Display.Theme = theme.ByName(v.Theme).Name
	return nil
}

// NewSetupForm builds the setup wizard bound to v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to mfocus").
				Description("Window activity comes from ActivityWatch.\nAmbiguous windows can be classified by a local Ollama model."),
			huh.NewInput().
				Title("ActivityWatch URL").
				Value(&v.ActivityWatchURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Window watcher bucket").
				Description("Leave blank for aw-watcher-window_<hostname>").
				Value(&v.Bucket),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Classify unknown windows with Ollama?").
				Value(&v.UseOllama),
			huh.NewInput().
				Title("Ollama URL").
				Value(&v.OllamaURL),
			huh.NewInput().
				Title("Ollama model").
				Placeholder("llama3").
				Value(&v.OllamaModel),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save categorized events to SQLite?").
				Value(&v.StoreEnabled),
			huh.NewInput().
				Title("User ID for stored events").
				Value(&v.UserID),
			huh.NewInput().
				Title("Timeline UTC offset").
				Placeholder("+08:00").
				Value(&v.UTCOffset).
				Validate(validateOffset),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
	).WithShowHelp(true)
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("enter a full URL such as http://localhost:5600")
	}
	return nil
}

func validateOffset(s string) error {
	if _, err := pipeline.ParseOffset(s); err != nil {
		return fmt.Errorf("utc offset: %w", err)
	}
	return nil
}
