package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policyvault/internal/db"
	"policyvault/internal/export"
	"policyvault/internal/repository"
)

var (
	exportUser   string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's backup file to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		if exportUser == "" {
			return errors.New("--user is required")
		}
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db connection failed: %w", err)
		}
		defer pool.Close()
		store := repository.NewStore(pool)

		exportedBy := exportUser
		profile, err := store.GetProfile(ctx, exportUser)
		switch {
		case err == nil && profile.Email != nil:
			exportedBy = *profile.Email
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("load profile: %w", err)
		}

		file, err := export.Export(ctx, store, exportUser, exportedBy, f, time.Now())
		if err != nil {
			return err
		}
		path := filepath.Join(exportOut, file.Name)
		if err := os.WriteFile(path, file.Body, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("export written", zap.String("path", path), zap.Int("bytes", len(file.Body)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "user id whose data is exported")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", ".", "output directory")
}
