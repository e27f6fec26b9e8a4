package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"timetracker.com/timetracker/app"
	"timetracker.com/timetracker/export"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/timesheet"
)

func newExportCmd() *cobra.Command {
	var (
		status     string
		format     string
		week       int
		year       int
		out        string
		upload     bool
		recipients []string
		list       bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export timesheets to a file, S3 or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				ctx := cmd.Context()

				if list {
					if a.Archive == nil {
						return fmt.Errorf("EXPORT_BUCKET is not configured")
					}
					keys, err := a.Archive.ListFiles(ctx)
					if err != nil {
						return err
					}
					for _, k := range keys {
						fmt.Fprintln(cmd.OutOrStdout(), k)
					}
					return nil
				}

				req := service.ReportRequest{Status: model.TimesheetStatus(status), Format: format}
				if week != 0 {
					req.Week = &timesheet.Week{Number: week, Year: year}
					if !req.Week.Valid() {
						return fmt.Errorf("invalid week %s", req.Week)
					}
				}
				file, err := service.BuildReport(ctx, a.Store, req, time.Now(), a.Location)
				if err != nil {
					return err
				}

				if out == "" {
					out = file.Filename
				}
				if out == "-" {
					_, err = cmd.OutOrStdout().Write(file.Content)
				} else {
					err = os.WriteFile(out, file.Content, 0o644)
				}
				if err != nil {
					return err
				}

				if !upload && len(recipients) == 0 {
					return nil
				}
				if upload && a.Archive == nil {
					return fmt.Errorf("EXPORT_BUCKET is not configured")
				}
				if !upload {
					a.Archive = nil
				}
				d, err := a.Deliver(ctx, file, recipients)
				if err != nil {
					return err
				}
				if d.Key != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "uploaded", d.Key)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(model.StatusApproved), "approved, pending or rejected")
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv or xlsx")
	cmd.Flags().IntVar(&week, "week", 0, "ISO week number, all weeks when 0")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "ISO year of --week")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path, - for stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload to EXPORT_BUCKET")
	cmd.Flags().StringSliceVar(&recipients, "mail", nil, "email the export to these addresses")
	cmd.Flags().BoolVar(&list, "list", false, "list archived exports instead")
	return cmd
}
