package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lojf/campreg/internal/auth"
	"github.com/lojf/campreg/internal/export"
	"github.com/lojf/campreg/internal/models"
	"github.com/lojf/campreg/internal/report"
)

var (
	migrateCamp uint

	exportCamps  []uint
	exportPreset string
	exportExpand bool
	exportOut    string

	tokenUser uint
	tokenTTL  time.Duration

	newUsername string
	newRole     string
	newCamp     uint
	newAssigned []uint
)

var delegatesCmd = &cobra.Command{
	Use:   "delegates",
	Short: "Delegate maintenance",
}

var delegatesMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Assign legacy delegates without a camp to --camp",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		n, err := reg.MigrateDelegates(cmd.Context(), migrateCamp)
		if err != nil {
			return err
		}
		logger.Info("delegates migrated", zap.Uint("camp_id", migrateCamp), zap.Int64("count", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%d delegates moved to camp %d\n", n, migrateCamp)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Offline reports",
}

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a report to an .xlsx or .csv file",
	Long: `Runs a report straight against the configured store, without a session,
and writes it to --out. The file extension picks the format.

Example:
  campreg report export --camp 1 --camp 2 --preset distribution --out dist.xlsx`,
	RunE: runReportExport,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		u, err := reg.GetUser(cmd.Context(), tokenUser)
		if err != nil {
			return err
		}
		tok, err := auth.Issue(cfg.JWTSecret, u.ID, u.Username, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Operator accounts",
}

// userCreateCmd bootstraps accounts before any admin can sign in.
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an operator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		u := models.User{Username: newUsername, Role: newRole, AssignedCamps: newAssigned}
		if newCamp != 0 {
			u.CampID = &newCamp
		}
		if err := reg.CreateUser(cmd.Context(), &u); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) created\n", u.ID, u.Role)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&newUsername, "username", "", "login name")
	userCreateCmd.Flags().StringVar(&newRole, "role", models.RoleAdmin, "system_admin, admin, supervisor, manager or user")
	userCreateCmd.Flags().UintVar(&newCamp, "camp", 0, "camp id for manager and user accounts")
	userCreateCmd.Flags().UintSliceVar(&newAssigned, "assign", nil, "assigned camp id for supervisors, repeatable")
	_ = userCreateCmd.MarkFlagRequired("username")
	userCmd.AddCommand(userCreateCmd)


	delegatesMigrateCmd.Flags().UintVar(&migrateCamp, "camp", 0, "target camp id")
	_ = delegatesMigrateCmd.MarkFlagRequired("camp")
	delegatesCmd.AddCommand(delegatesMigrateCmd)

	reportExportCmd.Flags().UintSliceVar(&exportCamps, "camp", nil, "camp id, repeatable (default all camps)")
	reportExportCmd.Flags().StringVar(&exportPreset, "preset", report.DefaultPreset, "column preset")
	reportExportCmd.Flags().BoolVar(&exportExpand, "expand", false, "include whole families of matched members")
	reportExportCmd.Flags().StringVarP(&exportOut, "out", "o", "report.xlsx", "output file")
	reportCmd.AddCommand(reportExportCmd)

	tokenCmd.Flags().UintVar(&tokenUser, "user", 0, "user id")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runReportExport(cmd *cobra.Command, args []string) error {
	ext := strings.ToLower(filepath.Ext(exportOut))
	if ext != ".csv" && ext != ".xlsx" {
		return fmt.Errorf("unsupported output extension %q (want .xlsx or .csv)", ext)
	}
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	src, _ := listSource(reg)

	cols, err := report.Preset(exportPreset)
	if err != nil {
		return err
	}
	ds, err := report.NewLoader(src, logger).Load(cmd.Context(), exportCamps)
	if err != nil {
		return err
	}
	res, err := report.NewEngine(cfg.Language()).Run(ds, report.Criteria{
		CampIDs: exportCamps,
		Expand:  exportExpand,
		Columns: cols,
	})
	if err != nil {
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if ext == ".csv" {
		err = export.WriteCSV(f, res)
	} else {
		err = export.WriteXLSX(f, res, export.Options{RightToLeft: true})
	}
	if err != nil {
		return err
	}
	logger.Info("report exported", zap.String("path", exportOut), zap.Int("rows", res.Count))
	return nil
}
