package payroll

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

func formatMoney(d decimal.Decimal) string {
	return "Rp " + humanize.FormatFloat("#.###,##", d.InexactFloat64())
}

type pdfRow struct {
	label string
	value string
}

// RenderPDF writes an A4 payslip for a slip the caller may read.
func (s *PayrollServiceImpl) RenderPDF(ctx context.Context, id string, w io.Writer) (string, error) {
	slip, err := s.readable(ctx, id)
	if err != nil {
		return "", err
	}

	name, code := "", ""
	if slip.EmployeeName != nil {
		name = *slip.EmployeeName
	}
	if slip.EmployeeCode != nil {
		code = *slip.EmployeeCode
	}
	if name == "" {
		emp, err := s.employeeRepo.GetByID(ctx, slip.EmployeeID)
		if err != nil {
			return "", err
		}
		name, code = emp.FullName, emp.EmployeeCode
	}

	period := time.Date(slip.PeriodYear, time.Month(slip.PeriodMonth), 1, 0, 0, 0, 0, time.UTC)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 8, fmt.Sprintf("Employee: %s (%s)", name, code))
	pdf.Ln(8)
	pdf.Cell(40, 8, fmt.Sprintf("Period: %s", period.Format("January 2006")))
	pdf.Ln(8)
	pdf.Cell(40, 8, fmt.Sprintf("Status: %s", slip.Status))
	pdf.Ln(12)

	section := func(title string, rows []pdfRow) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 11)
		for _, r := range rows {
			pdf.Cell(110, 7, r.label)
			pdf.CellFormat(70, 7, r.value, "", 0, "R", false, 0, "")
			pdf.Ln(7)
		}
		pdf.Ln(4)
	}

	earnings := []pdfRow{{"Base salary", formatMoney(slip.BaseSalary)}}
	for _, l := range slip.Allowances {
		earnings = append(earnings, pdfRow{l.Name, formatMoney(l.Amount)})
	}
	earnings = append(earnings, pdfRow{
		fmt.Sprintf("Overtime (%s h)", slip.OvertimeHours.StringFixed(2)),
		formatMoney(slip.OvertimePay),
	})
	section("Earnings", earnings)

	var deductions []pdfRow
	for _, l := range slip.Deductions {
		deductions = append(deductions, pdfRow{l.Name, formatMoney(l.Amount)})
	}
	deductions = append(deductions, pdfRow{
		fmt.Sprintf("Absence (%d of %d days)", slip.AbsentDays, slip.WorkingDays),
		formatMoney(slip.AbsenceDeduction),
	})
	section("Deductions", deductions)

	section("Attendance", []pdfRow{
		{"Working days", fmt.Sprint(slip.WorkingDays)},
		{"Present", fmt.Sprint(slip.PresentDays)},
		{"Late", fmt.Sprint(slip.LateDays)},
		{"Leave", fmt.Sprint(slip.LeaveDays)},
		{"Absent", fmt.Sprint(slip.AbsentDays)},
	})

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(110, 8, "Gross pay")
	pdf.CellFormat(70, 8, formatMoney(slip.GrossPay), "", 0, "R", false, 0, "")
	pdf.Ln(8)
	pdf.Cell(110, 8, "Total deductions")
	pdf.CellFormat(70, 8, formatMoney(slip.TotalDeductions), "", 0, "R", false, 0, "")
	pdf.Ln(8)
	pdf.Cell(110, 8, "Net pay")
	pdf.CellFormat(70, 8, formatMoney(slip.NetPay), "T", 0, "R", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 10, fmt.Sprintf("Generated at: %s", s.clock.Now().Format("02 January 2006 15:04:05")))

	if err := pdf.Output(w); err != nil {
		return "", fmt.Errorf("render payslip pdf: %w", err)
	}
	return fmt.Sprintf("payslip-%s-%04d-%02d.pdf", code, slip.PeriodYear, slip.PeriodMonth), nil
}
