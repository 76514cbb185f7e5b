package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ekp-forecast-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no data rows")
	ErrMissingColumns    = errors.New("required columns not found")
)

var (
	dateColumnNames  = []string{"date", "month", "start_date", "дата", "месяц", "дата начала"}
	valueColumnNames = []string{"value", "count", "events", "количество", "мероприятия"}
)

// importDateLayouts дополняет форматы дат рядов форматами из выгрузок таблиц.
var importDateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"01.2006",
	"2006/01/02",
	"2006/1/2",
	"01-02-06",
}

// ImportService преобразует выгрузки CSV/XLSX в помесячные ряды.
type ImportService struct{}

// NewImportService создаёт новый ImportService.
func NewImportService() *ImportService {
	return &ImportService{}
}

// ParseSeriesFile читает файл .csv или .xlsx. Если есть столбец значений, они
// суммируются по месяцам; иначе каждая строка считается одним мероприятием.
func (s *ImportService) ParseSeriesFile(name string, r io.Reader) (models.Series, error) {
	rows, err := s.readRows(name, r)
	if err != nil {
		return nil, err
	}
	return s.rowsToSeries(rows)
}

func (s *ImportService) readRows(name string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("read sheet: %w", err)
		}
		return rows, nil
	case ".csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

func (s *ImportService) rowsToSeries(rows [][]string) (models.Series, error) {
	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	header := rows[0]
	dateCol := findColumn(header, dateColumnNames...)
	if dateCol == -1 {
		return nil, fmt.Errorf("%w: date column in header %v", ErrMissingColumns, header)
	}
	valueCol := findColumn(header, valueColumnNames...)

	counts := make(map[int]int)
	for _, row := range rows[1:] {
		if len(row) <= dateCol {
			continue
		}
		t, ok := parseImportDate(row[dateCol])
		if !ok {
			continue
		}

		amount := 1
		if valueCol != -1 {
			if len(row) <= valueCol {
				continue
			}
			v, err := strconv.Atoi(strings.TrimSpace(row[valueCol]))
			if err != nil || v < 0 {
				continue
			}
			amount = v
		}
		counts[ordinalOf(t)] += amount
	}

	if len(counts) == 0 {
		return nil, ErrEmptyFile
	}
	return seriesFromCounts(counts), nil
}

// findColumn возвращает индекс первого заголовка, совпавшего с одним из кандидатов.
func findColumn(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range header {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

func parseImportDate(value string) (time.Time, bool) {
	if t, ok := ParseSeriesDate(value); ok {
		return t, true
	}
	value = strings.TrimSpace(value)
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
