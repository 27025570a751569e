package feedback

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Feedback"

var exportHeader = []interface{}{
	"id", "date", "main_dish_rating", "main_dish_taste_rating",
	"accompaniment_rating", "accompaniment_taste_rating", "portion_rating",
	"finished_plate", "not_eaten_reason", "chosen_main_course",
	"chosen_accompaniment", "comment",
}

// ExportXLSX writes entries as a spreadsheet: one header row, then one row
// per entry in the given order.
func ExportXLSX(w io.Writer, entries []Feedback) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", exportHeader); err != nil {
		return err
	}

	for i, e := range entries {
		reason := ""
		if e.NotEatenReason != nil {
			reason = *e.NotEatenReason
		}
		row := []interface{}{
			e.ID, e.Date.Format("2006-01-02 15:04:05"), e.MainDishRating, e.MainDishTasteRating,
			e.AccompanimentRating, e.AccompanimentTasteRating, e.PortionRating,
			e.FinishedPlate, reason, e.ChosenMainCourse,
			e.ChosenAccompaniment, e.Comment,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
