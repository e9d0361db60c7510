package export

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/gravadigital/konkatsu-api/internal/domain/matching"
	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/domain/seating"
)

const (
	SheetMatches    = "Matches"
	SheetSeating    = "Seating"
	SheetUnassigned = "Unassigned"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Input is everything stored for one party round. Seating is nil for rounds
// without a chart.
type Input struct {
	Participants []*participant.Participant
	Matches      []*matching.Record
	Seating      *seating.Result
}

// Exporter builds the staff workbook for a round.
type Exporter struct {
	headerStyle int
}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes the Matches, Seating and Unassigned sheets and returns the xlsx bytes.
func (e *Exporter) Export(in Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	e.headerStyle = style

	idx := participant.NewIndex(in.Participants)

	if err := f.SetSheetName("Sheet1", SheetMatches); err != nil {
		return nil, err
	}
	if err := e.writeMatches(f, idx, in.Matches); err != nil {
		return nil, fmt.Errorf("failed to write matches sheet: %w", err)
	}

	for _, name := range []string{SheetSeating, SheetUnassigned} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	if err := e.writeSeating(f, in.Seating); err != nil {
		return nil, fmt.Errorf("failed to write seating sheet: %w", err)
	}
	if err := e.writeUnassigned(f, idx, in.Seating); err != nil {
		return nil, fmt.Errorf("failed to write unassigned sheet: %w", err)
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return f.SetRowStyle(sheet, 1, 1, e.headerStyle)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func (e *Exporter) writeMatches(f *excelize.File, idx participant.Index, records []*matching.Record) error {
	if err := e.writeHeader(f, SheetMatches, []string{
		"Position", "Kind", "Male No.", "Male name", "Female No.", "Female name",
	}); err != nil {
		return err
	}

	for i, r := range records {
		male, female := lookup(idx, r.MaleID), lookup(idx, r.FemaleID)
		if err := writeRow(f, SheetMatches, i+2, []any{
			r.Position, string(r.Kind), male.Number, male.Name, female.Number, female.Name,
		}); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(SheetMatches, "B", "B", 10); err != nil {
		return err
	}
	return f.SetColWidth(SheetMatches, "D", "F", 24)
}

func (e *Exporter) writeSeating(f *excelize.File, res *seating.Result) error {
	if err := e.writeHeader(f, SheetSeating, []string{
		"Table", "Seat", "No.", "Name", "Gender",
	}); err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	row := 2
	for _, table := range res.Tables {
		for _, seat := range table.Seats {
			values := []any{table.Name, seat.Position + 1, "", "", ""}
			if occ := seat.Occupant; occ != nil {
				values[2], values[3], values[4] = occ.Number, occ.Name, string(occ.Gender)
			}
			if err := writeRow(f, SheetSeating, row, values); err != nil {
				return err
			}
			row++
		}
	}

	return f.SetColWidth(SheetSeating, "A", "A", 16)
}

func (e *Exporter) writeUnassigned(f *excelize.File, idx participant.Index, res *seating.Result) error {
	if err := e.writeHeader(f, SheetUnassigned, []string{"No.", "Name", "Gender"}); err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	for i, id := range res.Unassigned {
		p := lookup(idx, id)
		if err := writeRow(f, SheetUnassigned, i+2, []any{p.Number, p.Name, string(p.Gender)}); err != nil {
			return err
		}
	}
	return nil
}

// lookup tolerates participants removed after results were generated.
func lookup(idx participant.Index, id uuid.UUID) *participant.Participant {
	if p, ok := idx[id]; ok {
		return p
	}
	return &participant.Participant{ID: id, Name: id.String()}
}
