package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spacesedan/ideiamap/internal/models"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// TEXT_COLUMN is the header of the idea text column in batch files.
const TEXT_COLUMN = "IDEIA"

var (
	ErrMissingTextColumn = errors.New("batch file has no " + TEXT_COLUMN + " column")
	ErrUnsupportedFormat = errors.New("unsupported batch file format")
	ErrEmptyFile         = errors.New("batch file is empty")
)

// ReadIdeas parses a CSV, TSV or XLSX batch file and returns one batch idea
// per data row. The text column is validated before any row is returned.
func ReadIdeas(filename string, r io.Reader) ([]models.Idea, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	rows, err := parseRows(filename, content)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	column := textColumnIndex(rows[0])
	if column < 0 {
		slog.Warn("[Ingest] Text column missing",
			slog.String("file", filename),
			slog.Any("headers", rows[0]))
		return nil, ErrMissingTextColumn
	}

	ideas := make([]models.Idea, 0, len(rows)-1)
	for _, row := range rows[1:] {
		text := ""
		if column < len(row) {
			text = row[column]
		}
		ideas = append(ideas, models.NewBatchIdea(text))
	}

	slog.Info("[Ingest] Batch file parsed",
		slog.String("file", filename),
		slog.Int("rows", len(ideas)))

	return ideas, nil
}

func parseRows(filename string, content []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", "":
		return parseCSV(content, ',')
	case ".tsv":
		return parseCSV(content, '\t')
	case ".xlsx":
		return parseExcel(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

func parseCSV(content []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func parseExcel(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	// the first sheet carrying the text column wins
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		if len(rows) > 0 && textColumnIndex(rows[0]) >= 0 {
			return rows, nil
		}
	}

	return f.GetRows(sheets[0])
}

func textColumnIndex(headers []string) int {
	for i, header := range headers {
		if strings.EqualFold(strings.TrimSpace(header), TEXT_COLUMN) {
			return i
		}
	}
	return -1
}
