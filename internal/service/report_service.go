package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const reportSheet = "Horas"

type ReportService interface {
	// SchoolMonthWorkbook renders the month's hours at a school as an XLSX file
	// and returns its bytes with a suggested file name.
	SchoolMonthWorkbook(ctx context.Context, schoolID string, month time.Month, year int) ([]byte, string, error)
}

type reportService struct {
	aggregation AggregationService
	schools     SchoolService
	log         zerolog.Logger
}

func NewReportService(aggregation AggregationService, schools SchoolService, log zerolog.Logger) ReportService {
	return &reportService{
		aggregation: aggregation,
		schools:     schools,
		log:         log.With().Str("service", "report").Logger(),
	}
}

func (s *reportService) SchoolMonthWorkbook(ctx context.Context, schoolID string, month time.Month, year int) ([]byte, string, error) {
	school, err := s.schools.GetSchool(ctx, schoolID)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.aggregation.HoursBySchoolAndMonth(ctx, schoolID, month, year)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), reportSheet); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}

	title := fmt.Sprintf("%s - %02d/%d", school.Name, int(month), year)
	if err := f.SetCellValue(reportSheet, "A1", title); err != nil {
		return nil, "", fmt.Errorf("failed to set cell value: %w", err)
	}

	headers := []string{"Empleado", "Cargo", "Correo", "Horas"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(reportSheet, cell, h); err != nil {
			return nil, "", fmt.Errorf("failed to set cell value: %w", err)
		}
	}

	total := decimal.Zero
	row := 4
	for _, r := range rows {
		values := []any{r.Employee.Name, r.Employee.Position, r.Employee.Email, r.Hours.InexactFloat64()}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to set cell value: %w", err)
			}
		}
		total = total.Add(r.Hours)
		row++
	}

	labelCell, _ := excelize.CoordinatesToCellName(1, row)
	totalCell, _ := excelize.CoordinatesToCellName(len(headers), row)
	if err := f.SetCellValue(reportSheet, labelCell, "Total"); err != nil {
		return nil, "", fmt.Errorf("failed to set cell value: %w", err)
	}
	if err := f.SetCellValue(reportSheet, totalCell, total.InexactFloat64()); err != nil {
		return nil, "", fmt.Errorf("failed to set cell value: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	name := fmt.Sprintf("horas_%s_%d_%02d.xlsx", strings.ReplaceAll(strings.ToLower(school.Name), " ", "_"), year, int(month))
	s.log.Debug().Str("school_id", schoolID).Int("rows", len(rows)).Msg("school month workbook built")
	return buf.Bytes(), name, nil
}
