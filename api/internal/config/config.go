package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	GeminiAPIKey string
	GeminiModel  string

	CatalogBaseURL   string
	CatalogUserAgent string

	// Bearer-токены операторов, через запятую. Пусто = доступ закрыт.
	APITokens []string

	TelegramBotToken string

	DatabaseDSN string
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() *Config {
	// .env — для локального запуска; в проде переменные приходят из окружения
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8000"),

		GeminiAPIKey: mustEnv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		CatalogBaseURL:   getEnv("CATALOG_BASE_URL", "https://world.openfoodfacts.org"),
		CatalogUserAgent: getEnv("CATALOG_USER_AGENT", "shelf-scan/1.0"),

		APITokens: splitTokens(os.Getenv("API_TOKENS")),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		DatabaseDSN: ResolveDSN(),
	}
}

func splitTokens(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ResolveDSN возвращает DATABASE_URL, либо собирает DSN из POSTGRES_*/PG*.
func ResolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	user := getenvDefault("POSTGRES_USER", "shelfscan")
	pass := os.Getenv("POSTGRES_PASSWORD")
	host := getenvDefault("PGHOST", "db")
	port := getenvDefault("PGPORT", "5432")
	db := getenvDefault("POSTGRES_DB", "shelfscan")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getenvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
