// Package export writes stored listings to spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/copa-listings/internal/listing"
)

// SheetName is the worksheet listings are written to.
const SheetName = "Listings"

// Headers are the column titles, in order.
var Headers = []string{
	"Received",
	"Address",
	"Neighborhood",
	"Asking Price",
	"Total Units",
	"Residential Units",
	"Vacant Residential",
	"Commercial Units",
	"Vacant Commercial",
	"Vacant Lot",
	"Flagged",
	"Listing ID",
}

// WriteXLSX writes one row per listing to w.
func WriteXLSX(listings []listing.Stored, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, l := range listings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			l.TimeSent.Format("2006-01-02 15:04"),
			l.FullAddress,
			l.Neighborhood,
			floatCell(l.AskingPrice),
			intCell(l.TotalUnits),
			intCell(l.ResidentialUnits),
			intCell(l.VacantResidential),
			intCell(l.CommercialUnits),
			intCell(l.VacantCommercial),
			yesNo(l.IsVacantLot),
			yesNo(l.Flagged),
			l.ID,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 17)
	_ = f.SetColWidth(SheetName, "B", "B", 48)
	_ = f.SetColWidth(SheetName, "C", "C", 24)
	_ = f.SetColWidth(SheetName, "D", "D", 14)
	_ = f.SetColWidth(SheetName, "E", "K", 12)
	_ = f.SetColWidth(SheetName, "L", "L", 38)
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func intCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func floatCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
