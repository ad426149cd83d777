package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gantt-planner-api/internal/excel"
	"gantt-planner-api/internal/logging"
	"gantt-planner-api/internal/services"
	"gantt-planner-api/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	projectID uint
	username  string
	outPath   string
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import tasks from an .xlsx workbook into a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, uid, err := openAs(cmd)
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		report, err := services.NewImportService(services.NewEnv(st, nil, nil)).Import(cmd.Context(), uid, projectID, f)
		if err != nil {
			return err
		}
		logging.Logger.WithFields(logrus.Fields{
			"project_id": projectID,
			"imported":   report.Imported,
			"skipped":    len(report.RowWarnings),
		}).Info("import finished")

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a project's tasks to an .xlsx workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, uid, err := openAs(cmd)
		if err != nil {
			return err
		}
		if outPath == "" {
			outPath = fmt.Sprintf("project-%d-tasks.xlsx", projectID)
		}
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := services.NewImportService(services.NewEnv(st, nil, nil)).Export(cmd.Context(), uid, projectID, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), outPath)
		return nil
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a sample import workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outPath == "" {
			outPath = "task-import-template.xlsx"
		}
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := excel.Template(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), outPath)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{importCmd, exportCmd} {
		c.Flags().UintVarP(&projectID, "project", "p", 0, "project ID")
		c.Flags().StringVarP(&username, "user", "u", "", "username that owns the project")
		_ = c.MarkFlagRequired("project")
		_ = c.MarkFlagRequired("user")
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")
	templateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")
	rootCmd.AddCommand(importCmd, exportCmd, templateCmd)
}

// openAs opens the database and resolves --user to the acting user's ID.
func openAs(cmd *cobra.Command) (*store.Store, uint, error) {
	st, err := openStore()
	if err != nil {
		return nil, 0, err
	}
	u, err := st.GetUserByUsername(cmd.Context(), username)
	if err != nil {
		return nil, 0, fmt.Errorf("user %q: %w", username, err)
	}
	return st, u.ID, nil
}
