package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Timesheets"
)

// Header is the fixed column order of every export.
var Header = []string{
	"Week", "Year", "Project", "User",
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
	"Total Hours", "Status", "Submitted", "Approved By", "Approved At", "Rejection Reason",
}

// FilenameExt is <status>-timesheets-<yyyy-MM-dd>.<ext>.
func FilenameExt(status model.TimesheetStatus, now time.Time, ext string) string {
	return fmt.Sprintf("%s-timesheets-%s.%s", status, now.Format(utils.DateLayout), ext)
}

func ContentType(format string) string {
	if format == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// Row renders one timesheet in Header order. Dates use loc; the total is
// recomputed from the day fields. Timesheets need User, Project and Approver
// loaded.
func Row(t model.Timesheet, loc *time.Location) []string {
	project := ""
	if t.Project != nil {
		project = t.Project.Name
	}
	approvedAt := ""
	if t.ApprovedAt != nil {
		approvedAt = t.ApprovedAt.In(loc).Format(utils.DateLayout)
	}
	submitted := t.SubmittedAt.In(loc)

	return []string{
		strconv.Itoa(t.WeekNumber),
		strconv.Itoa(t.Year),
		project,
		t.User.DisplayName(),
		utils.FormatHours(t.MondayHours),
		utils.FormatHours(t.TuesdayHours),
		utils.FormatHours(t.WednesdayHours),
		utils.FormatHours(t.ThursdayHours),
		utils.FormatHours(t.FridayHours),
		utils.FormatHours(timesheet.DailyTotal(t)),
		string(t.Status),
		utils.FormatDate(&submitted),
		t.Approver.DisplayName(),
		approvedAt,
		utils.Deref(t.RejectionReason),
	}
}

func WriteCSV(w io.Writer, rows []model.Timesheet, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, t := range rows {
		if err := cw.Write(Row(t, loc)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same columns as WriteCSV into a single sheet. Hour
// columns are numeric cells.
func WriteXLSX(w io.Writer, rows []model.Timesheet, loc *time.Location) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	header := utils.Map(Header, func(h string) interface{} { return h })
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, t := range rows {
		cells := utils.Map(Row(t, loc), func(v string) interface{} { return v })
		cells[0], cells[1] = t.WeekNumber, t.Year
		for j, h := range timesheet.HoursOf(t).Values() {
			cells[4+j] = h
		}
		cells[9] = timesheet.DailyTotal(t)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
