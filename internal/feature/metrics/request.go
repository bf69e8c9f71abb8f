package metrics

import (
	"strings"
	"unicode"

	"aesthetic_doctor_bot/internal/domain"
)

// Request is a parsed metrics command.
type Request struct {
	Format domain.Format
	Keys   []domain.MetricKey
}

// ParseRequest reads the format and metric keys from command arguments.
// Without a forced format the first format token picks the format. Unknown
// tokens are ignored, keys are deduplicated in order and an empty selection
// means every metric.
func ParseRequest(args string, forced domain.Format) Request {
	tokens := strings.FieldsFunc(strings.ToLower(args), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	req := Request{Format: domain.DefaultFormat}
	if forced != "" {
		req.Format = forced
	}

	seen := make(map[domain.MetricKey]bool)
	for _, token := range tokens {
		if forced == "" && req.Format == domain.DefaultFormat {
			if format, ok := domain.ParseFormat(token); ok {
				req.Format = format
				continue
			}
		}

		key, ok := domain.ParseMetricKey(token)
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		req.Keys = append(req.Keys, key)
	}

	if len(req.Keys) == 0 {
		req.Keys = append([]domain.MetricKey(nil), domain.AllMetricKeys...)
	}
	return req
}
