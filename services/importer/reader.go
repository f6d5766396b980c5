package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"coursehub/apperrors"

	"github.com/xuri/excelize/v2"
)

// Row is one data row keyed by its original header text.
type Row map[string]string

// ReadRows decodes the first sheet of an xlsx workbook, or a CSV file when
// filename ends in .csv. Blank rows are dropped.
func ReadRows(data []byte, filename string) ([]Row, error) {
	var (
		grid [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		grid, err = readCSV(data)
	} else {
		grid, err = readWorkbook(data)
	}
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, apperrors.NewInvalidError("No data rows found in the uploaded file")
	}

	headers := grid[0]
	rows := make([]Row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := Row{}
		blank := true
		for i, h := range headers {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			v := ""
			if i < len(cells) {
				v = strings.TrimSpace(cells[i])
			}
			if v != "" {
				blank = false
			}
			row[h] = v
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, apperrors.NewInvalidError("No data rows found in the uploaded file")
	}
	return rows, nil
}

// Cells are read as displayed, so times and text keep their formatting.
// Date and numeric columns are re-read raw: dates become spreadsheet
// serials for parseDate and numbers lose currency or grouping formats.
func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.E(apperrors.Invalid, "Unable to read the uploaded spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewInvalidError("No sheets found in the uploaded file")
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.E(apperrors.Invalid, "Unable to read the uploaded spreadsheet", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	var rawCols []int
	for i, h := range rows[0] {
		if rawColumn(h) {
			rawCols = append(rawCols, i)
		}
	}
	for r := 1; r < len(rows); r++ {
		for _, col := range rawCols {
			if col >= len(rows[r]) || rows[r][col] == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+1)
			if err != nil {
				return nil, apperrors.E(apperrors.Invalid, "Unable to read the uploaded spreadsheet", err)
			}
			v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
			if err != nil {
				return nil, apperrors.E(apperrors.Invalid, "Unable to read the uploaded spreadsheet", err)
			}
			rows[r][col] = v
		}
	}
	return rows, nil
}

// rawColumn reports whether a header holds dates, a capacity or a
// Fee/Discount/Price amount.
func rawColumn(header string) bool {
	switch field, _ := CanonicalField(header); field {
	case FieldStartDate, FieldEndDate, FieldMaxParticipants:
		return true
	}
	key := NormalizeKey(header)
	for _, prefix := range []string{"fee", "discount", "price"} {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return true
		}
	}
	return false
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, apperrors.E(apperrors.Invalid, "Unable to read the uploaded CSV file", err)
		}
		out = append(out, rec)
	}
}
