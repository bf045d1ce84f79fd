package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"cardscan/pkg/ocr"
)

// Config is read once at startup from the environment.
type Config struct {
	Port           string
	UploadDir      string
	ResultDir      string
	MaxUploadBytes int64
	Detector       ocr.Config
	LexiconPath    string
	CORSOrigins    []string
	LogLevel       string

	JWTSecret        []byte
	AuthUsername     string
	AuthPasswordHash []byte
}

// loadConfig reads the environment after seeding it from ./.env when that
// file exists. Variables already set are not overwritten.
func loadConfig() Config {
	_ = godotenv.Load()
	return Config{
		Port:           getEnv("PORT", "8081"),
		UploadDir:      getEnv("UPLOAD_BASE", "uploads"),
		ResultDir:      getEnv("RESULT_BASE", "results"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
		Detector: ocr.Config{
			Name:     getEnv("DETECTOR", "tesseract"),
			Language: getEnv("OCR_LANG", "eng"),
			URL:      os.Getenv("DETECTOR_URL"),
			Timeout:  getEnvDuration("DETECTOR_TIMEOUT", 30*time.Second),
		},
		LexiconPath:      os.Getenv("LEXICON_PATH"),
		CORSOrigins:      splitList(os.Getenv("CORS_ORIGINS")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		JWTSecret:        []byte(os.Getenv("JWT_SECRET")),
		AuthUsername:     os.Getenv("AUTH_USERNAME"),
		AuthPasswordHash: []byte(os.Getenv("AUTH_PASSWORD_HASH")),
	}
}

// authEnabled is true only when every auth variable is present.
func (c Config) authEnabled() bool {
	return len(c.JWTSecret) > 0 && c.AuthUsername != "" && len(c.AuthPasswordHash) > 0
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
