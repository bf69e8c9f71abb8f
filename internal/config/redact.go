package config

import (
	"fmt"
	"net/url"
	"strings"
)

const redactedSuffix = "...redacted"

// FormatRedacted renders the resolved configuration as "key: value" lines with
// secrets masked and URI credentials removed.
func FormatRedacted(cfg Config) string {
	lines := []string{
		"app_env: " + cfg.AppEnv,
		"log_level: " + cfg.LogLevel,
		fmt.Sprintf("http_port: %d", cfg.HTTPPort),
		"telegram_token: " + MaskSecret(cfg.TelegramToken),
		"metrics_endpoint: " + orUnset(RedactURI(cfg.MetricsEndpoint)),
		"metrics_bot_token: " + MaskSecret(cfg.MetricsBotToken),
		"supabase_url: " + orUnset(RedactURI(cfg.SupabaseURL)),
		"supabase_anon_key: " + MaskSecret(cfg.SupabaseAnonKey),
		"supabase_production_host: " + orUnset(cfg.SupabaseProdHost),
		"chart_endpoint: " + orUnset(RedactURI(cfg.ChartEndpoint)),
		"codes_backend: " + cfg.CodesBackend,
	}

	switch cfg.CodesBackend {
	case BackendPostgres:
		lines = append(lines, "codes_database_url: "+orUnset(RedactURI(cfg.CodesDatabaseURL)))
	default:
		lines = append(lines,
			"mongo_uri: "+orUnset(RedactURI(cfg.MongoURI)),
			"mongo_db: "+orUnset(cfg.MongoDB),
		)
	}

	lines = append(lines,
		"code_label: "+cfg.CodeLabel,
		"session_ttl: "+cfg.SessionTTL.String(),
	)

	return strings.Join(lines, "\n")
}

// MaskSecret keeps the first four characters of a secret.
func MaskSecret(value string) string {
	if value == "" {
		return "(unset)"
	}
	if len(value) <= 4 {
		return redactedSuffix[3:]
	}
	return value[:4] + redactedSuffix
}

// RedactURI strips user info from a URI. Unparseable values are masked whole.
func RedactURI(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return MaskSecret(raw)
	}
	parsed.User = nil
	return parsed.String()
}

func orUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}
