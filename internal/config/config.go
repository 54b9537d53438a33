package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"slotline/internal/domain"
)

type Config struct {
	HTTPHost        string
	HTTPPort        int
	DatabaseURL     string
	ShutdownTimeout time.Duration
	LogLevel        string

	WorkingHours    domain.WorkingHours
	BlockedDates    []domain.CivilDate
	SeedDemoBooking bool

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SLOTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("shutdown.timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("hours.start", 9)
	v.SetDefault("hours.end", 17)
	v.SetDefault("hours.weekdays", "mon,tue,wed,thu,fri")
	v.SetDefault("blocked.dates", "")
	v.SetDefault("demo.seed_booking", false)

	_ = v.BindEnv("http.host", "SLOTLINE_HTTP_HOST", "HTTP_HOST")
	_ = v.BindEnv("http.port", "SLOTLINE_HTTP_PORT", "HTTP_PORT", "PORT")
	_ = v.BindEnv("database.url", "SLOTLINE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("database.max_open_conns", "SLOTLINE_DATABASE_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.max_idle_conns", "SLOTLINE_DATABASE_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.conn_max_lifetime", "SLOTLINE_DATABASE_CONN_MAX_LIFETIME")
	_ = v.BindEnv("database.conn_max_idle_time", "SLOTLINE_DATABASE_CONN_MAX_IDLE_TIME")
	_ = v.BindEnv("shutdown.timeout", "SLOTLINE_SHUTDOWN_TIMEOUT", "SHUTDOWN_TIMEOUT")
	_ = v.BindEnv("log.level", "SLOTLINE_LOG_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("hours.start", "SLOTLINE_HOURS_START")
	_ = v.BindEnv("hours.end", "SLOTLINE_HOURS_END")
	_ = v.BindEnv("hours.weekdays", "SLOTLINE_HOURS_WEEKDAYS")
	_ = v.BindEnv("blocked.dates", "SLOTLINE_BLOCKED_DATES")
	_ = v.BindEnv("demo.seed_booking", "SLOTLINE_DEMO_SEED_BOOKING")

	timeout, err := time.ParseDuration(v.GetString("shutdown.timeout"))
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		return Config{}, err
	}
	connMaxIdleTime, err := time.ParseDuration(v.GetString("database.conn_max_idle_time"))
	if err != nil {
		return Config{}, err
	}

	weekdays, err := parseWeekdays(v.GetString("hours.weekdays"))
	if err != nil {
		return Config{}, err
	}

	hours := domain.WorkingHours{
		StartHour: v.GetInt("hours.start"),
		EndHour:   v.GetInt("hours.end"),
		Weekdays:  weekdays,
	}
	if err := hours.Validate(); err != nil {
		return Config{}, err
	}

	blocked, err := parseBlockedDates(v.GetString("blocked.dates"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPHost:          strings.TrimSpace(v.GetString("http.host")),
		HTTPPort:          v.GetInt("http.port"),
		DatabaseURL:       v.GetString("database.url"),
		ShutdownTimeout:   timeout,
		LogLevel:          v.GetString("log.level"),
		WorkingHours:      hours,
		BlockedDates:      blocked,
		SeedDemoBooking:   v.GetBool("demo.seed_booking"),
		DBMaxOpenConns:    v.GetInt("database.max_open_conns"),
		DBMaxIdleConns:    v.GetInt("database.max_idle_conns"),
		DBConnMaxLifetime: connMaxLifetime,
		DBConnMaxIdleTime: connMaxIdleTime,
	}, nil
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// parseWeekdays accepts comma-separated day names ("mon,tue") or ISO weekday
// ordinals ("1,2" with 1=Monday, 7=Sunday).
func parseWeekdays(s string) (map[time.Weekday]bool, error) {
	out := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if wd, ok := weekdayNames[part]; ok {
			out[wd] = true
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 7 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		if n == 7 {
			out[time.Sunday] = true
		} else {
			out[time.Weekday(n)] = true
		}
	}
	return out, nil
}

func parseBlockedDates(s string) ([]domain.CivilDate, error) {
	var out []domain.CivilDate
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := domain.ParseCivilDate(part)
		if err != nil {
			return nil, fmt.Errorf("invalid blocked date %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}
