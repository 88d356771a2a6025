package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// BackendOpenCV runs the model through the OpenCV DNN module.
	BackendOpenCV = "opencv"
	// BackendONNX runs the model through ONNX Runtime.
	BackendONNX = "onnx"
)

type Config struct {
	Host                string
	Port                int
	DetectorBackend     string
	ModelPath           string
	ModelConfigPath     string // Optional network config for OpenCV (e.g. .pbtxt, .cfg)
	LabelsPath          string // Empty means the built-in COCO vocabulary
	CategoriesPath      string // Empty means the built-in waste catalog
	ONNXLibraryPath     string
	ModelInputSize      int
	ConfidenceThreshold float64
	IoUThreshold        float64
	DetectorWorkers     int   // Number of detector instances shared by in-flight requests
	MaxUploadBytes      int64 // Maximum accepted request body size
	MaxImagePixels      int64 // Maximum decoded raster size (width * height)
	LogDirectory        string
	ShutdownTimeout     time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory, when present, is loaded first without overriding
// variables that are already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Host:                getEnv("HOST", "0.0.0.0"),
		Port:                getEnvAsInt("PORT", 5000),
		DetectorBackend:     strings.ToLower(getEnv("DETECTOR_BACKEND", BackendOpenCV)),
		ModelPath:           getEnv("MODEL_PATH", filepath.Join(".", "models", "yolov8x.onnx")),
		ModelConfigPath:     getEnv("MODEL_CONFIG_PATH", ""),
		LabelsPath:          getEnv("LABELS_PATH", ""),
		CategoriesPath:      getEnv("CATEGORIES_PATH", ""),
		ONNXLibraryPath:     getEnv("ONNX_LIBRARY_PATH", ""),
		ModelInputSize:      getEnvAsInt("MODEL_INPUT_SIZE", 640),
		ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.25),
		IoUThreshold:        getEnvAsFloat("IOU_THRESHOLD", 0.7),
		DetectorWorkers:     getEnvAsInt("DETECTOR_WORKERS", 2),
		MaxUploadBytes:      getEnvAsInt64("MAX_UPLOAD_BYTES", 16<<20),
		MaxImagePixels:      getEnvAsInt64("MAX_IMAGE_PIXELS", 40_000_000),
		LogDirectory:        getEnv("LOG_DIR", filepath.Join(".", "logs")),
		ShutdownTimeout:     time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT", 10)) * time.Second,
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.DetectorBackend {
	case BackendOpenCV, BackendONNX:
	default:
		errs = append(errs, fmt.Errorf("DETECTOR_BACKEND must be %q or %q, got %q", BackendOpenCV, BackendONNX, c.DetectorBackend))
	}
	if c.ModelPath == "" {
		errs = append(errs, errors.New("MODEL_PATH must not be empty"))
	}
	if c.ModelInputSize <= 0 || c.ModelInputSize%32 != 0 {
		errs = append(errs, fmt.Errorf("MODEL_INPUT_SIZE must be a positive multiple of 32, got %d", c.ModelInputSize))
	}
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		errs = append(errs, fmt.Errorf("CONFIDENCE_THRESHOLD must be within (0,1], got %v", c.ConfidenceThreshold))
	}
	if c.IoUThreshold <= 0 || c.IoUThreshold > 1 {
		errs = append(errs, fmt.Errorf("IOU_THRESHOLD must be within (0,1], got %v", c.IoUThreshold))
	}
	if c.DetectorWorkers < 1 {
		errs = append(errs, fmt.Errorf("DETECTOR_WORKERS must be at least 1, got %d", c.DetectorWorkers))
	}
	if c.MaxUploadBytes < 1 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.MaxImagePixels < 1 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_PIXELS must be positive, got %d", c.MaxImagePixels))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
