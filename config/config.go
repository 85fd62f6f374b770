package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	APIBaseURL     string
	StateDir       string
	HTTPTimeoutSec int
	Debug          bool

	// Fixture server settings (yowa serve)
	Port      string
	DBName    string
	JWTKey    string
	SaltRound int
	UploadDir string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		APIBaseURL:     getEnv("YOWA_API_URL", "http://localhost:5000"),
		StateDir:       getEnv("YOWA_STATE_DIR", defaultStateDir()),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SECONDS", 15),
		Debug:          getEnv("YOWA_DEBUG", "") != "",

		Port:      getEnv("PORT", "5000"),
		DBName:    getEnv("DB_NAME", "yowa.db"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
	}

	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
}

// defaultStateDir places session state under the user config directory,
// falling back to a dotted directory in the working directory.
func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".yowa"
	}
	return filepath.Join(base, "yowa")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
