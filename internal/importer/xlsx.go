package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"hanzi/internal/domain"

	"github.com/xuri/excelize/v2"
)

var xlsxColumns = []string{"character", "traditional", "pinyin", "meaning", "hsk_level", "stroke_count"}

// DecodeXLSX reads characters from the first sheet of a workbook. The first row is a header
// naming the columns; unknown columns are ignored and missing ones stay empty.
func DecodeXLSX(r io.Reader) (domain.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Dataset{}, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return domain.Dataset{}, nil
	}

	index := make(map[string]int, len(xlsxColumns))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["character"]; !ok {
		return domain.Dataset{}, fmt.Errorf("header has no %q column", "character")
	}

	var data domain.Dataset
	for n, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		c := domain.Character{
			Character:   cell("character"),
			Traditional: cell("traditional"),
			Pinyin:      cell("pinyin"),
			Meaning:     cell("meaning"),
		}
		if c.Character == "" {
			continue
		}
		if c.HSKLevel, err = atoi(cell("hsk_level")); err != nil {
			return domain.Dataset{}, fmt.Errorf("row %d: hsk_level: %w", n+2, err)
		}
		if c.StrokeCount, err = atoi(cell("stroke_count")); err != nil {
			return domain.Dataset{}, fmt.Errorf("row %d: stroke_count: %w", n+2, err)
		}
		data.Characters = append(data.Characters, c)
	}

	return data, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
