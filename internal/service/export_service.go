package service

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"appointment-dashboard/internal/domain/entity"

	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the tabular output of an export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// Column sets offered to callers.
const (
	ColumnSetFull  = "full"
	ColumnSetTable = "table"
)

const (
	exportDelimiter      = ','
	exportSheetName      = "Agendamentos"
	exportFilePrefix     = "agendamentos_"
	exportDateTimeLayout = "02/01/2006 15:04:05"
)

var ErrUnknownExportFormat = errors.New("unknown export format")

// ContentType is the MIME type served with the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ExportColumn is one exported column: its header label and how to read the value.
type ExportColumn struct {
	Header string
	Value  func(entity.Appointment) string
}

// FullExportColumns is the complete export, with the appointment instant rendered in loc.
func FullExportColumns(loc *time.Location) []ExportColumn {
	if loc == nil {
		loc = time.UTC
	}
	return []ExportColumn{
		{Header: "ID Oportunidade", Value: func(a entity.Appointment) string { return a.OpportunityID }},
		{Header: "Paciente", Value: func(a entity.Appointment) string { return a.PatientName }},
		{Header: "Cidade", Value: func(a entity.Appointment) string { return a.City }},
		{Header: "Data/Hora", Value: func(a entity.Appointment) string {
			if !a.HasAppointmentDate() {
				return "N/A"
			}
			return a.AppointmentDate.In(loc).Format(exportDateTimeLayout)
		}},
		{Header: "Procedimento", Value: func(a entity.Appointment) string { return a.Procedure }},
		{Header: "Médico", Value: func(a entity.Appointment) string { return a.Doctor }},
		{Header: "Convênio", Value: func(a entity.Appointment) string { return a.Insurance }},
		{Header: "Status", Value: func(a entity.Appointment) string { return string(a.Status) }},
		{Header: "Telefone", Value: func(a entity.Appointment) string { return a.Phone }},
		{Header: "Email", Value: func(a entity.Appointment) string { return a.Email }},
		{Header: "Observações", Value: func(a entity.Appointment) string { return a.Notes }},
	}
}

// TableExportColumns mirrors the columns of the appointments table.
func TableExportColumns() []ExportColumn {
	return []ExportColumn{
		{Header: "Paciente", Value: func(a entity.Appointment) string { return a.PatientName }},
		{Header: "Cidade", Value: func(a entity.Appointment) string { return a.City }},
		{Header: "Procedimento", Value: func(a entity.Appointment) string { return a.Procedure }},
		{Header: "Médico", Value: func(a entity.Appointment) string { return a.Doctor }},
		{Header: "Convênio", Value: func(a entity.Appointment) string { return a.Insurance }},
		{Header: "Status", Value: func(a entity.Appointment) string { return string(a.Status) }},
	}
}

// ExportColumnSet resolves a column set name; unknown names fall back to the full set.
func ExportColumnSet(name string, loc *time.Location) []ExportColumn {
	if name == ColumnSetTable {
		return TableExportColumns()
	}
	return FullExportColumns(loc)
}

// ExportFilename embeds the date of at, e.g. agendamentos_20261015.csv.
func ExportFilename(format ExportFormat, at time.Time) string {
	return exportFilePrefix + at.Format("20060102") + "." + string(format)
}

// Export writes records in the given format.
func Export(w io.Writer, format ExportFormat, records []entity.Appointment, columns []ExportColumn) error {
	switch format {
	case ExportFormatCSV:
		return WriteCSV(w, records, columns)
	case ExportFormatXLSX:
		return WriteXLSX(w, records, columns)
	}
	return fmt.Errorf("%w: %q", ErrUnknownExportFormat, format)
}

// SerializeCSV returns the delimited form of records.
func SerializeCSV(records []entity.Appointment, columns []ExportColumn) []byte {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, records, columns)
	return buf.Bytes()
}

// WriteCSV writes a header row and one row per record. Every field is quoted and embedded
// quotes are doubled; rows end with "\n".
func WriteCSV(w io.Writer, records []entity.Appointment, columns []ExportColumn) error {
	bw := bufio.NewWriter(w)

	header := make([]string, len(columns))
	for i, column := range columns {
		header[i] = column.Header
	}
	writeQuotedRow(bw, header)

	row := make([]string, len(columns))
	for _, record := range records {
		for i, column := range columns {
			row[i] = column.Value(record)
		}
		writeQuotedRow(bw, row)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	return nil
}

func writeQuotedRow(bw *bufio.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			bw.WriteByte(exportDelimiter)
		}
		bw.WriteByte('"')
		bw.WriteString(strings.ReplaceAll(field, `"`, `""`))
		bw.WriteByte('"')
	}
	bw.WriteByte('\n')
}

// WriteXLSX writes a workbook with a single sheet holding the header row and the records.
func WriteXLSX(w io.Writer, records []entity.Appointment, columns []ExportColumn) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return fmt.Errorf("export xlsx: rename sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, column := range columns {
		header[i] = column.Header
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	for r, record := range records {
		row := make([]interface{}, len(columns))
		for i, column := range columns {
			row[i] = column.Value(record)
		}
		if err := setRow(f, r+2, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export xlsx: write: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("export xlsx: row %d: %w", row, err)
	}
	if err := f.SetSheetRow(exportSheetName, cell, &values); err != nil {
		return fmt.Errorf("export xlsx: row %d: %w", row, err)
	}
	return nil
}
