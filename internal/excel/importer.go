package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/sinhala/internal/lessonparse"
	"github.com/example/sinhala/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	SinhalaColumn  string // Column with the Sinhala word
	EnglishColumn  string // Column with the English meaning
	TranslitColumn string // Column with the transliteration
	AudioColumn    string // Column with the audio file
	SheetName      string // Sheet to import; empty means the first sheet
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SinhalaColumn:  "A",
		EnglishColumn:  "B",
		TranslitColumn: "C",
		AudioColumn:    "D",
		StartRow:       2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Duplicates     int
	Errors         []string
	Vocab          []models.VocabItem
}

// columns holds zero-based column indexes; -1 means not imported
type columns struct {
	sinhala, english, translit, audio int
}

// ImportVocab reads vocabulary rows from an Excel or CSV file
func ImportVocab(config ImportConfig) (*ImportResult, error) {
	cols, err := config.columns()
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(config.FilePath)) {
	case ".csv":
		rows, err = readCSV(config.FilePath)
	case ".xlsx", ".xlsm":
		rows, err = readExcel(config.FilePath, config.SheetName)
	default:
		return nil, fmt.Errorf("%s: %w", config.FilePath, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	seen := make(map[string]bool)

	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++
		item := models.VocabItem{
			Sinhala:  cellAt(row, cols.sinhala),
			English:  cellAt(row, cols.english),
			Translit: cellAt(row, cols.translit),
			Audio:    cellAt(row, cols.audio),
		}
		if item.Sinhala == "" || item.English == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Sinhala and English are required", i+1))
			continue
		}

		// Повторы по синхальскому слову пропускаем
		key := lessonparse.NormalizeTarget(item.Sinhala)
		if seen[key] {
			result.Duplicates++
			continue
		}
		seen[key] = true

		result.Vocab = append(result.Vocab, item)
		result.Imported++
	}
	return result, nil
}

func (c ImportConfig) columns() (columns, error) {
	var cols columns
	var err error
	if cols.sinhala, err = columnIndex(c.SinhalaColumn); err != nil {
		return cols, err
	}
	if cols.english, err = columnIndex(c.EnglishColumn); err != nil {
		return cols, err
	}
	if cols.sinhala < 0 || cols.english < 0 {
		return cols, errors.New("sinhala and english columns are required")
	}
	if cols.translit, err = columnIndex(c.TranslitColumn); err != nil {
		return cols, err
	}
	if cols.audio, err = columnIndex(c.AudioColumn); err != nil {
		return cols, err
	}
	return cols, nil
}

// columnIndex converts a column name such as "B" to a zero-based index
func columnIndex(name string) (int, error) {
	if name == "" {
		return -1, nil
	}
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", name, err)
	}
	return n - 1, nil
}

// readExcel returns the rows of a sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// readCSV returns the records of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true    // Allow lazy quotes for custom CSV format

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteTemplate creates an xlsx file with the import header row
func WriteTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Sinhala", "English", "Transliteration", "Audio"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}
