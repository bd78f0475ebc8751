// utils/safelog.go
// ============================================================================
// SAFE LOGGING - Masque les données sensibles en production
// ============================================================================
// Logging helpers that mask emails and invite tokens when running in
// production, so shared calendars never leak personal data into logs.
// ============================================================================

package utils

import (
	"log"
	"os"
	"strings"
)

var (
	// IsProduction determines whether sensitive data gets masked.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// MaskEmail keeps the first character and the domain: "a***@example.com".
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// MaskToken keeps the first 8 characters of an invite or refresh token.
func MaskToken(token string) string {
	if !IsProduction {
		return token
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

func LogDebug(format string, args ...interface{}) {
	if LogLevel <= LogLevelDebug {
		log.Printf("🔍 "+format, args...)
	}
}

func LogInfo(format string, args ...interface{}) {
	if LogLevel <= LogLevelInfo {
		log.Printf("ℹ️ "+format, args...)
	}
}

func LogWarn(format string, args ...interface{}) {
	if LogLevel <= LogLevelWarn {
		log.Printf("⚠️ "+format, args...)
	}
}

func LogError(format string, args ...interface{}) {
	if LogLevel <= LogLevelError {
		log.Printf("❌ "+format, args...)
	}
}
