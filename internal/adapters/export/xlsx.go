// Package export renders event results as downloadable spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/types"
)

// ContentType is the media type of the workbook written by WriteXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName is the worksheet holding the results table.
const SheetName = "Results"

var header = []interface{}{"Rank", "Runner", "House", "Time", "Medal"}

// Filename derives a download name from the board's event, e.g.
// "boys-14-years-3km.xlsx".
func Filename(b types.Board) string {
	name := "results"
	if b.Event != nil {
		if s := slug.Make(b.Event.Name); s != "" {
			name = s
		}
	}
	return name + ".xlsx"
}

// WriteXLSX writes every row of b as one worksheet. House cells take the
// house background and text colours.
func WriteXLSX(w io.Writer, b types.Board) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrRender, cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if b.Event != nil {
		if err := f.SetDocProps(&excelize.DocProperties{Title: b.Event.Name, Creator: "CGS Cross Country"}); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", bold); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	styles := make(map[string]int)
	for i, row := range b.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		values := []interface{}{row.Rank, row.RunnerName, string(row.House), row.Time, row.Medal}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}

		style, ok := styles[string(row.House)]
		if !ok {
			style, err = f.NewStyle(houseStyle(row.Colors))
			if err != nil {
				return fmt.Errorf("%w: %w", ErrRender, err)
			}
			styles[string(row.House)] = style
		}
		houseCell, _ := excelize.CoordinatesToCellName(3, i+2)
		if err := f.SetCellStyle(SheetName, houseCell, houseCell, style); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
	}

	if err := f.SetColWidth(SheetName, "B", "B", 32); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := f.SetColWidth(SheetName, "C", "C", 14); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

func houseStyle(p types.Palette) *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{Color: strings.TrimPrefix(p.Text, "#"), Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(p.Background, "#")},
		},
	}
}
