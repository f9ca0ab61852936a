package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"

	"github.com/Dicklesworthstone/hwinfo/internal/model"
)

// Config carries runtime options for hwinfo.
type Config struct {
	Interval      time.Duration
	Fields        []model.Field
	Locale        language.Tag
	Dedup         bool
	JSON          bool
	JSONStream    bool
	EnableCamera  bool
	CameraDevice  string
	EnableSensors bool
	EnableBatt    bool
	SysRoot       string
	Display       model.DisplayMetrics
	LogLevel      string
	LogFile       string
}

func Default() Config {
	return Config{
		Interval:      time.Second,
		Fields:        model.AllFields(),
		Locale:        language.English,
		Dedup:         false,
		JSON:          false,
		JSONStream:    false,
		EnableCamera:  true,
		CameraDevice:  "/dev/video0",
		EnableSensors: true,
		EnableBatt:    true,
		SysRoot:       "/sys",
		LogLevel:      "info",
		LogFile:       "hwinfo.log",
	}
}

// FromFlags parses flags and environment overrides.
func FromFlags(args []string) (Config, error) {
	cfg := Default()
	var fields, locale string
	fs := flag.NewFlagSet("hwinfo", flag.ContinueOnError)
	fs.DurationVar(&cfg.Interval, "interval", cfg.Interval, "sensor and battery poll interval")
	fs.StringVar(&fields, "fields", "full", "preset (basic|sensors|full) or comma-separated field names")
	fs.StringVar(&locale, "locale", cfg.Locale.String(), "BCP 47 locale for numbers")
	fs.BoolVar(&cfg.Dedup, "dedup", cfg.Dedup, "coalesce updates that arrive while a refresh is running")
	fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "output one-shot JSON and exit")
	fs.BoolVar(&cfg.JSONStream, "json-stream", cfg.JSONStream, "stream NDJSON until interrupted")
	fs.BoolVar(&cfg.EnableCamera, "camera", cfg.EnableCamera, "enable camera query")
	fs.StringVar(&cfg.CameraDevice, "camera-device", cfg.CameraDevice, "V4L2 capture device")
	fs.BoolVar(&cfg.EnableSensors, "sensors", cfg.EnableSensors, "enable environmental sensors")
	fs.BoolVar(&cfg.EnableBatt, "battery", cfg.EnableBatt, "enable battery sampling")
	fs.StringVar(&cfg.SysRoot, "sysfs", cfg.SysRoot, "sysfs mount point")
	fs.IntVar(&cfg.Display.WidthPixels, "width", 0, "display width override in pixels")
	fs.IntVar(&cfg.Display.HeightPixels, "height", 0, "display height override in pixels")
	fs.Float64Var(&cfg.Display.XDPI, "xdpi", 0, "horizontal dpi override")
	fs.Float64Var(&cfg.Display.YDPI, "ydpi", 0, "vertical dpi override")
	fs.Float64Var(&cfg.Display.Density, "density", 0, "logical density scale override (1.0 = 160 dpi)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file, - for stderr")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if v := os.Getenv("HWINFO_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := os.Getenv("HWINFO_FIELDS"); v != "" {
		fields = v
	}
	if v := os.Getenv("HWINFO_LOCALE"); v != "" {
		locale = v
	}
	if v := os.Getenv("HWINFO_CAMERA"); v == "0" {
		cfg.EnableCamera = false
	}
	if v := os.Getenv("HWINFO_SENSORS"); v == "0" {
		cfg.EnableSensors = false
	}
	if v := os.Getenv("HWINFO_BATT"); v == "0" {
		cfg.EnableBatt = false
	}
	if v := os.Getenv("HWINFO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	parsed, err := model.ParseFields(fields)
	if err != nil {
		return cfg, fmt.Errorf("-fields: %w", err)
	}
	cfg.Fields = parsed

	tag, err := language.Parse(locale)
	if err != nil {
		return cfg, fmt.Errorf("-locale %q: %w", locale, err)
	}
	cfg.Locale = tag

	if cfg.Interval <= 0 {
		return cfg, fmt.Errorf("-interval must be positive, got %s", cfg.Interval)
	}
	return cfg, nil
}
