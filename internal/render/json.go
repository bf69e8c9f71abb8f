package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aesthetic_doctor_bot/internal/domain"
)

var fileNameReplacer = strings.NewReplacer(":", "-", ".", "-")

// JSON attaches the indented snapshot. Its file name carries generated_at,
// or now when the snapshot has none.
func JSON(snapshot domain.Snapshot, keys []domain.MetricKey, now time.Time) (domain.Attachment, error) {
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("encode snapshot: %w", err)
	}

	stamp := snapshot.GeneratedAt
	if stamp == "" {
		stamp = now.UTC().Format("2006-01-02T15:04:05.000Z")
	}

	caption := strings.Join([]string{
		"Requested metrics: " + domain.JoinKeys(keys, ", "),
		"Format: JSON",
		"Generated: " + FormatDateTime(stamp),
	}, "\n")

	return domain.Attachment{
		Kind:     domain.AttachmentDocument,
		FileName: "metrics-" + fileNameReplacer.Replace(stamp) + ".json",
		Data:     body,
		Caption:  caption,
	}, nil
}
