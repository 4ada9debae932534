package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath     string
	RawMailDir string
	OutputDir  string

	BackofficeAPIBaseURL string
	BackofficeAPIToken   string
	BackofficeRateRPS    int
	BackofficeTimeoutMs  int

	// Tuned empirically against real pasted messages; the intake keeps
	// behaving compatibly only if these stay put.
	CustomerMatchThreshold float64
	ProductMatchThreshold  float64
	HistoryBoost           float64
	HistoryTimeoutMs       int

	UOMVocabulary []string
	DefaultUOM    string

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	IntakeProvider     string
	IntakeLabel        string
	IntakeIntervalSec  int
	IntakeFetchMax     int
	IntakeProcessBatch int
}

var defaultUOMVocabulary = []string{"kg", "g", "ctn", "pcs", "pkt", "bdl", "box", "tray", "bch", "bag", "roll"}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:     getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawMailDir: getEnv("MAIL_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		BackofficeAPIBaseURL: getEnv("BACKOFFICE_API_BASE_URL", "https://backoffice.freshops.local/api/v1"),
		BackofficeAPIToken:   getEnv("BACKOFFICE_API_TOKEN", ""),
		BackofficeRateRPS:    getEnvInt("BACKOFFICE_RATE_LIMIT_RPS", 5),
		BackofficeTimeoutMs:  getEnvInt("BACKOFFICE_TIMEOUT_MS", 30000),

		CustomerMatchThreshold: getEnvFloat("CUSTOMER_MATCH_THRESHOLD", 30),
		ProductMatchThreshold:  getEnvFloat("PRODUCT_MATCH_THRESHOLD", 25),
		HistoryBoost:           getEnvFloat("HISTORY_BOOST", 40),
		HistoryTimeoutMs:       getEnvInt("HISTORY_TIMEOUT_MS", 3000),

		UOMVocabulary: getEnvList("UOM_VOCABULARY", defaultUOMVocabulary),
		DefaultUOM:    getEnv("DEFAULT_UOM", "pcs"),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		IntakeProvider:     getEnv("INTAKE_PROVIDER", "gmail"),
		IntakeLabel:        getEnv("INTAKE_LABEL", "INBOX"),
		IntakeIntervalSec:  getEnvInt("INTAKE_INTERVAL_SEC", 30),
		IntakeFetchMax:     getEnvInt("INTAKE_FETCH_MAX", 20),
		IntakeProcessBatch: getEnvInt("INTAKE_PROCESS_BATCH", 20),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
