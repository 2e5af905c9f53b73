package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/lingoscan/internal/model"
)

// ExportFileName is the attachment name of /export.
const ExportFileName = "ulatus_linguistic_report.csv"

var csvHeader = []string{"URL", "Title", "Count", "Type", "Group"}

// WriteCSV writes items as the export CSV. Failed items keep their URL and
// carry the error text in the Group column.
func WriteCSV(w io.Writer, items []model.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write(csvRecord(it)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(it model.Item) []string {
	if it.Failed() || it.Stats == nil {
		return []string{it.URL, "Fetch Failed", "0", "-", "Error: " + it.Error}
	}
	return []string{
		it.URL,
		it.DisplayTitle(),
		strconv.Itoa(it.Stats.Count),
		strings.ToUpper(it.Stats.Type),
		it.Stats.LanguageGroup,
	}
}
