package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the runtime configuration, read once at startup. Every key
// is optional; a missing key degrades the feature it drives.
type Settings struct {
	HTTPAddr       string
	AllowedOrigins []string
	FormConfigPath string
	LogFile        string

	// DatabaseDSN selects the Postgres draft store; empty keeps drafts in memory.
	DatabaseDSN string
	StartMode   string
	QuietPeriod time.Duration
	MaxSessions int

	// SubmitProvider is "web3forms" or "emailjs".
	SubmitProvider     string
	Web3FormsAccessKey string
	EmailJSServiceID   string
	EmailJSTemplateID  string
	EmailJSPublicKey   string
	SubmitTimeout      time.Duration

	// CalendlyURL enables the booking widget after a successful submit.
	CalendlyURL string

	TelegramBotToken string
	TargetUserID     int64
}

// settingKeys maps each setting to the environment names it is read from,
// first match wins.
var settingKeys = map[string][]string{
	"http_addr":             {"HTTP_ADDR"},
	"cors_origins":          {"CORS_ORIGINS"},
	"form_config":           {"FORM_CONFIG"},
	"log_file":              {"LOG_FILE"},
	"database_dsn":          {"DATABASE_DSN"},
	"start_mode":            {"START_MODE"},
	"autosave_quiet_period": {"AUTOSAVE_QUIET_PERIOD"},
	"max_sessions":          {"MAX_SESSIONS"},
	"submit_provider":       {"SUBMIT_PROVIDER"},
	"web3forms_access_key":  {"WEB3FORMS_ACCESS_KEY", "VITE_WEB3FORMS_ACCESS_KEY"},
	"emailjs_service_id":    {"EMAILJS_SERVICE_ID", "VITE_EMAILJS_SERVICE_ID"},
	"emailjs_template_id":   {"EMAILJS_TEMPLATE_ID", "VITE_EMAILJS_TEMPLATE_ID"},
	"emailjs_public_key":    {"EMAILJS_PUBLIC_KEY", "VITE_EMAILJS_PUBLIC_KEY"},
	"submit_timeout":        {"SUBMIT_TIMEOUT"},
	"calendly_url":          {"CALENDLY_URL", "VITE_CALENDLY_URL"},
	"telegram_bot_token":    {"TELEGRAM_BOT_TOKEN"},
	"target_user_id":        {"TARGET_USER_ID"},
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("start_mode", "restore")
	v.SetDefault("autosave_quiet_period", "1s")
	v.SetDefault("max_sessions", 1024)
	v.SetDefault("submit_provider", "web3forms")
	v.SetDefault("submit_timeout", "30s")
	for key, envs := range settingKeys {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			log.Printf("Warning: cannot bind %s: %v", key, err)
		}
	}
	return v
}

// LoadSettings reads the environment and, when configFile is set, a config
// file whose keys are the lower-case setting names. Environment wins.
func LoadSettings(configFile string) (Settings, error) {
	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read settings file '%s': %w", configFile, err)
		}
		log.Printf("Settings file %s loaded.", configFile)
	}
	return settingsFrom(v)
}

func settingsFrom(v *viper.Viper) (Settings, error) {
	s := Settings{
		HTTPAddr:           v.GetString("http_addr"),
		AllowedOrigins:     splitList(v.GetString("cors_origins")),
		FormConfigPath:     v.GetString("form_config"),
		LogFile:            v.GetString("log_file"),
		DatabaseDSN:        v.GetString("database_dsn"),
		StartMode:          strings.ToLower(strings.TrimSpace(v.GetString("start_mode"))),
		QuietPeriod:        v.GetDuration("autosave_quiet_period"),
		MaxSessions:        v.GetInt("max_sessions"),
		SubmitProvider:     strings.ToLower(strings.TrimSpace(v.GetString("submit_provider"))),
		Web3FormsAccessKey: v.GetString("web3forms_access_key"),
		EmailJSServiceID:   v.GetString("emailjs_service_id"),
		EmailJSTemplateID:  v.GetString("emailjs_template_id"),
		EmailJSPublicKey:   v.GetString("emailjs_public_key"),
		SubmitTimeout:      v.GetDuration("submit_timeout"),
		CalendlyURL:        v.GetString("calendly_url"),
		TelegramBotToken:   v.GetString("telegram_bot_token"),
	}

	target, err := ParseTargetUserID(v.GetString("target_user_id"))
	if err != nil {
		return Settings{}, err
	}
	s.TargetUserID = target

	switch s.StartMode {
	case "template", "restore":
	default:
		return Settings{}, fmt.Errorf("invalid START_MODE %q: want 'template' or 'restore'", s.StartMode)
	}
	switch s.SubmitProvider {
	case "web3forms", "emailjs":
	default:
		return Settings{}, fmt.Errorf("invalid SUBMIT_PROVIDER %q: want 'web3forms' or 'emailjs'", s.SubmitProvider)
	}
	if s.QuietPeriod <= 0 {
		return Settings{}, fmt.Errorf("invalid AUTOSAVE_QUIET_PERIOD: must be positive")
	}
	return s, nil
}

// Warnings lists the features that are disabled by missing settings.
func (s Settings) Warnings() []string {
	var out []string
	switch s.SubmitProvider {
	case "web3forms":
		if s.Web3FormsAccessKey == "" {
			out = append(out, "WEB3FORMS_ACCESS_KEY is not set; submissions will fail with a configuration error")
		}
	case "emailjs":
		if s.EmailJSServiceID == "" || s.EmailJSTemplateID == "" || s.EmailJSPublicKey == "" {
			out = append(out, "EMAILJS_SERVICE_ID/EMAILJS_TEMPLATE_ID/EMAILJS_PUBLIC_KEY are incomplete; submissions will fail with a configuration error")
		}
	}
	if s.CalendlyURL == "" {
		out = append(out, "CALENDLY_URL is not set; no scheduling widget after submit")
	}
	if s.DatabaseDSN == "" {
		out = append(out, "DATABASE_DSN is not set; drafts are kept in memory only")
	}
	if s.TelegramBotToken == "" || s.TargetUserID == 0 {
		out = append(out, "TELEGRAM_BOT_TOKEN or TARGET_USER_ID is not set; lead notifications are disabled")
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
