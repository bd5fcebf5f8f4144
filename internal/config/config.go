package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Detector    DetectorConfig
	Camera      CameraConfig
	Database    DatabaseConfig
	Roster      RosterConfig
	Web         WebConfig
	Recognition RecognitionConfig
}

type DetectorConfig struct {
	URL string // face detection service URL (defaults to http://localhost:8000)
}

type CameraConfig struct {
	SnapshotURL string // HTTP snapshot endpoint of the kiosk camera
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RosterConfig struct {
	DatabaseURL string // MariaDB DSN of the HR roster (e.g., hr:hr@tcp(mariadb:3306)/hr)
}

type WebConfig struct {
	Host string // bind host (defaults to all interfaces)
	Port int    // defaults to 8090
}

type RecognitionConfig struct {
	RequiredEnrollmentSamples  int     `yaml:"required_enrollment_samples"`
	EnrollmentQualityThreshold float64 `yaml:"enrollment_quality_threshold"`
	RecognitionThreshold       float64 `yaml:"recognition_threshold"`
	DistanceThreshold          float64 `yaml:"distance_threshold"`
	DistanceScale              float64 `yaml:"distance_scale"`
	CooldownMs                 int     `yaml:"cooldown_ms"`
	MaxAttempts                int     `yaml:"max_attempts"`
	ReferenceFaceArea          float64 `yaml:"reference_face_area"`
}

// Cooldown returns the recognition cooldown as a duration.
func (c *RecognitionConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMs) * time.Millisecond
}

type defaultsFile struct {
	Recognition RecognitionConfig `yaml:"recognition"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var defaults defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	rec := defaults.Recognition

	return &Config{
		Detector: DetectorConfig{
			URL: os.Getenv("DETECTOR_URL"),
		},
		Camera: CameraConfig{
			SnapshotURL: os.Getenv("CAMERA_SNAPSHOT_URL"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Roster: RosterConfig{
			DatabaseURL: os.Getenv("ROSTER_DATABASE_URL"),
		},
		Web: WebConfig{
			Host: os.Getenv("WEB_HOST"),
			Port: envInt("WEB_PORT", 8090),
		},
		Recognition: RecognitionConfig{
			RequiredEnrollmentSamples:  envInt("REQUIRED_ENROLLMENT_SAMPLES", rec.RequiredEnrollmentSamples),
			EnrollmentQualityThreshold: envFloat("ENROLLMENT_QUALITY_THRESHOLD", rec.EnrollmentQualityThreshold),
			RecognitionThreshold:       envFloat("RECOGNITION_THRESHOLD", rec.RecognitionThreshold),
			DistanceThreshold:          envFloat("MATCHER_DISTANCE_THRESHOLD", rec.DistanceThreshold),
			DistanceScale:              envFloat("MATCHER_DISTANCE_SCALE", rec.DistanceScale),
			CooldownMs:                 envInt("RECOGNITION_COOLDOWN_MS", rec.CooldownMs),
			MaxAttempts:                envInt("MAX_RECOGNITION_ATTEMPTS", rec.MaxAttempts),
			ReferenceFaceArea:          envFloat("REFERENCE_FACE_AREA", rec.ReferenceFaceArea),
		},
	}
}
