// Package config loads the immutable runtime configuration of the notifier.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sachintaksande/cowin-notifier/internal/slots"
)

// EnvPrefix prefixes every environment override, e.g. COWIN_TELEGRAM_BOTTOKEN.
const EnvPrefix = "COWIN"

// Config aggregates everything the notifier needs at startup.
type Config struct {
	LogLevel    string         `mapstructure:"logLevel" yaml:"logLevel"`
	Timezone    string         `mapstructure:"timezone" yaml:"timezone"`
	Greetings   bool           `mapstructure:"greetings" yaml:"greetings"`
	Preferences Preferences    `mapstructure:"preferences" yaml:"preferences"`
	Schedule    ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Cowin       CowinConfig    `mapstructure:"cowin" yaml:"cowin"`
	Telegram    TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
	Speech      SpeechConfig   `mapstructure:"speech" yaml:"speech"`
	SMTP        SMTPConfig     `mapstructure:"smtp" yaml:"smtp"`
	Metrics     MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`

	location *time.Location
}

// Preferences decide which targets are polled and which sessions notify.
type Preferences struct {
	MinimumAge   int   `mapstructure:"minimumAge" yaml:"minimumAge"`
	MinimumSlots int   `mapstructure:"minimumSlots" yaml:"minimumSlots"`
	DistrictIDs  []int `mapstructure:"districtIds" yaml:"districtIds"`
	PinCodes     []int `mapstructure:"pinCodes" yaml:"pinCodes"`
	// NearestDistrict is exempt from the afternoon date shift; 0 means none.
	NearestDistrict int    `mapstructure:"nearestDistrict" yaml:"nearestDistrict"`
	Vaccine         string `mapstructure:"vaccine" yaml:"vaccine"`
	FeeType         string `mapstructure:"feeType" yaml:"feeType"`
}

// ScheduleConfig holds the pacing of the polling loop, in seconds.
type ScheduleConfig struct {
	DaySleepSeconds      int `mapstructure:"daySleepSeconds" yaml:"daySleepSeconds"`
	NightSleepSeconds    int `mapstructure:"nightSleepSeconds" yaml:"nightSleepSeconds"`
	WeekPauseSeconds     int `mapstructure:"weekPauseSeconds" yaml:"weekPauseSeconds"`
	RecoveryDelaySeconds int `mapstructure:"recoveryDelaySeconds" yaml:"recoveryDelaySeconds"`
}

// CowinConfig points the availability client at the API.
type CowinConfig struct {
	BaseURL        string `mapstructure:"baseUrl" yaml:"baseUrl"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// TelegramConfig identifies the bot and chat receiving reports.
type TelegramConfig struct {
	BotToken string `mapstructure:"botToken" yaml:"botToken"`
	ChatID   string `mapstructure:"chatId" yaml:"chatId"`
}

// SpeechConfig controls spoken announcements.
type SpeechConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Command string   `mapstructure:"command" yaml:"command"`
	Args    []string `mapstructure:"args" yaml:"args"`
}

// SMTPConfig enables e-mail reports when Host is set.
type SMTPConfig struct {
	Host      string   `mapstructure:"host" yaml:"host"`
	Port      string   `mapstructure:"port" yaml:"port"`
	Email     string   `mapstructure:"email" yaml:"email"`
	Password  string   `mapstructure:"password" yaml:"password"`
	Receivers []string `mapstructure:"receivers" yaml:"receivers"`
}

// MetricsConfig exposes Prometheus metrics when Address is set.
type MetricsConfig struct {
	Address string `mapstructure:"address" yaml:"address"`
}

// Default returns the configuration used for keys absent from every source.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Greetings: true,
		Preferences: Preferences{
			MinimumAge:   44,
			MinimumSlots: 1,
		},
		Schedule: ScheduleConfig{
			DaySleepSeconds:      60,
			NightSleepSeconds:    1200,
			WeekPauseSeconds:     2,
			RecoveryDelaySeconds: 60,
		},
		Cowin: CowinConfig{
			BaseURL:        "https://cdn-api.co-vin.in/api",
			TimeoutSeconds: 15,
		},
		Speech: SpeechConfig{
			Enabled: true,
		},
	}
}

// Load reads the YAML file at path (skipped when empty), applies COWIN_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(strings.TrimSpace(path))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file when it exists.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("greetings", d.Greetings)
	v.SetDefault("preferences.minimumAge", d.Preferences.MinimumAge)
	v.SetDefault("preferences.minimumSlots", d.Preferences.MinimumSlots)
	v.SetDefault("preferences.districtIds", []int{})
	v.SetDefault("preferences.pinCodes", []int{})
	v.SetDefault("preferences.nearestDistrict", d.Preferences.NearestDistrict)
	v.SetDefault("preferences.vaccine", "")
	v.SetDefault("preferences.feeType", "")
	v.SetDefault("schedule.daySleepSeconds", d.Schedule.DaySleepSeconds)
	v.SetDefault("schedule.nightSleepSeconds", d.Schedule.NightSleepSeconds)
	v.SetDefault("schedule.weekPauseSeconds", d.Schedule.WeekPauseSeconds)
	v.SetDefault("schedule.recoveryDelaySeconds", d.Schedule.RecoveryDelaySeconds)
	v.SetDefault("cowin.baseUrl", d.Cowin.BaseURL)
	v.SetDefault("cowin.timeoutSeconds", d.Cowin.TimeoutSeconds)
	v.SetDefault("telegram.botToken", "")
	v.SetDefault("telegram.chatId", "")
	v.SetDefault("speech.enabled", d.Speech.Enabled)
	v.SetDefault("speech.command", "")
	v.SetDefault("speech.args", []string{})
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "")
	v.SetDefault("smtp.email", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.receivers", []string{})
	v.SetDefault("metrics.address", "")
}

// Validate checks cross-field constraints and resolves the timezone.
func (c *Config) Validate() error {
	p := c.Preferences
	if len(p.DistrictIDs) == 0 && len(p.PinCodes) == 0 {
		return errors.New("config: at least one district id or pin code is required (preferences.districtIds)")
	}
	for _, id := range p.DistrictIDs {
		if id <= 0 {
			return fmt.Errorf("config: invalid district id %d", id)
		}
	}
	for _, pin := range p.PinCodes {
		if pin < 100000 || pin > 999999 {
			return fmt.Errorf("config: invalid pin code %d", pin)
		}
	}
	if p.MinimumSlots < 1 {
		return errors.New("config: preferences.minimumSlots must be greater than 0")
	}
	if p.MinimumAge < 0 {
		return errors.New("config: preferences.minimumAge must not be negative")
	}
	if fee := strings.ToLower(p.FeeType); fee != "" && fee != "free" && fee != "paid" {
		return errors.New("config: preferences.feeType allowed values are blank, 'free', 'paid'")
	}

	s := c.Schedule
	if s.DaySleepSeconds <= 0 || s.NightSleepSeconds <= 0 {
		return errors.New("config: schedule sleep intervals must be positive")
	}
	if s.WeekPauseSeconds < 0 || s.RecoveryDelaySeconds < 0 {
		return errors.New("config: schedule pauses must not be negative")
	}

	if err := c.SMTP.validate(); err != nil {
		return err
	}

	loc := time.Local
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("config: load timezone: %w", err)
		}
	}
	c.location = loc
	return nil
}

func (s SMTPConfig) validate() error {
	if !s.Enabled() && s.Port == "" && s.Email == "" && len(s.Receivers) == 0 {
		return nil
	}
	if strings.TrimSpace(s.Host) == "" {
		return errors.New("config: the smtp host needs to be a valid value (smtp.host)")
	}
	if strings.TrimSpace(s.Port) == "" {
		return errors.New("config: the smtp port needs to be a valid port number (smtp.port)")
	}
	if err := checkmail.ValidateFormat(s.Email); err != nil {
		return fmt.Errorf("config: the smtp email needs to be a valid email (smtp.email): %w", err)
	}
	if strings.TrimSpace(s.Password) == "" {
		return errors.New("config: the smtp password needs to be a valid string (smtp.password)")
	}
	if len(s.Receivers) == 0 {
		return errors.New("config: at least one smtp receiver is required (smtp.receivers)")
	}
	for _, r := range s.Receivers {
		if err := checkmail.ValidateFormat(r); err != nil {
			return fmt.Errorf("config: invalid receiver email %q: %w", r, err)
		}
	}
	return nil
}

// Enabled reports whether e-mail delivery is configured.
func (s SMTPConfig) Enabled() bool {
	return strings.TrimSpace(s.Host) != ""
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return strings.TrimSpace(t.BotToken) != "" && strings.TrimSpace(t.ChatID) != ""
}

// Location is the timezone day/night and the cutoff are evaluated in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Criteria converts the preferences into slot filter criteria.
func (p Preferences) Criteria() slots.Criteria {
	return slots.Criteria{
		MinimumAge:   p.MinimumAge,
		MinimumSlots: p.MinimumSlots,
		Vaccine:      strings.TrimSpace(p.Vaccine),
		FeeType:      strings.TrimSpace(p.FeeType),
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (s ScheduleConfig) DaySleep() time.Duration      { return seconds(s.DaySleepSeconds) }
func (s ScheduleConfig) NightSleep() time.Duration    { return seconds(s.NightSleepSeconds) }
func (s ScheduleConfig) WeekPause() time.Duration     { return seconds(s.WeekPauseSeconds) }
func (s ScheduleConfig) RecoveryDelay() time.Duration { return seconds(s.RecoveryDelaySeconds) }

func (c CowinConfig) Timeout() time.Duration { return seconds(c.TimeoutSeconds) }

// WriteDefault writes a starter configuration to path without overwriting.
func WriteDefault(path string) error {
	cfg := Default()
	cfg.Preferences.DistrictIDs = []int{}
	cfg.Preferences.PinCodes = []int{}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode defaults: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
