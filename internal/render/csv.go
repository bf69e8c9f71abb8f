package render

import (
	"fmt"
	"strings"
	"time"

	"aesthetic_doctor_bot/internal/domain"
)

// EmptyCSV is the document produced when no section has content.
const EmptyCSV = "metric,data\nN/A,0"

// CSV builds one document with a "# <metric>" section per requested key.
func CSV(snapshot domain.Snapshot, keys []domain.MetricKey, now time.Time) domain.Attachment {
	var sections []string
	for _, key := range keys {
		sections = append(sections, "# "+string(key), rowsToCSV(snapshot.Rows(key)), "")
	}

	content := strings.TrimSpace(strings.Join(sections, "\n"))
	if content == "" {
		content = EmptyCSV
	}

	return domain.Attachment{
		Kind:     domain.AttachmentDocument,
		FileName: fmt.Sprintf("metrics-%d.csv", now.UnixMilli()),
		Data:     []byte(content),
		Caption:  "CSV metrics: " + domain.JoinKeys(keys, ", "),
	}
}

func rowsToCSV(rows []domain.Row) string {
	if len(rows) == 0 {
		return "n/a"
	}

	headers := rows[0].Keys()
	lines := []string{strings.Join(headers, ",")}

	for _, row := range rows {
		values := make([]string, len(headers))
		for i, header := range headers {
			values[i] = csvValue(row, header)
		}
		lines = append(lines, strings.Join(values, ","))
	}

	return strings.Join(lines, "\n")
}

// csvValue quotes every present value. Null and absent columns stay empty.
func csvValue(row domain.Row, key string) string {
	text, ok := row.Text(key)
	if !ok {
		return ""
	}
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}
