package config

import (
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	AuthSecret string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	// Text-generation service (Gemini-compatible REST surface).
	GenAIBaseURL    string
	GenAIAPIKey     string
	GenAIModel      string
	GenAITimeoutSec int
	GenAIRetries    int // extra attempts after the first failure
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: addr,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		AuthSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.aulavision.edu"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000"),

		GenAIBaseURL:    envOr("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GenAIAPIKey:     os.Getenv("GENAI_API_KEY"),
		GenAIModel:      envOr("GENAI_MODEL", "gemini-2.5-flash"),
		GenAITimeoutSec: envInt("GENAI_TIMEOUT_SECONDS", 60),
		GenAIRetries:    envInt("GENAI_MAX_RETRIES", 2),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
