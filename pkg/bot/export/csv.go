// Package export renders a user's approved links as a CSV document.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/smith3v/tg-link-curator/pkg/db"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// KeywordSeparator joins keywords inside the keywords column.
const KeywordSeparator = ";"

var header = []string{"url", "keywords"}

// BuildExportCSV writes a BOM-prefixed, CRLF-terminated CSV with a header row
// and one row per link.
func BuildExportCSV(links []db.Link) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(utf8BOM); err != nil {
		return nil, err
	}

	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true

	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, link := range links {
		if err := writer.Write([]string{link.URL, strings.Join(link.KeywordList(), KeywordSeparator)}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ExportFilename(now time.Time) string {
	return fmt.Sprintf("links-%s.csv", now.Format("20060102"))
}
