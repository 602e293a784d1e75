package cli

import (
	"context"
	"fmt"
	"io"

	"drivequest/internal/catalog"
	"drivequest/internal/config"
	"drivequest/internal/infra/file"
	pgcatalog "drivequest/internal/infra/postgres"
	rediscatalog "drivequest/internal/infra/redis"
	"drivequest/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewCatalogCmd groups the catalog maintenance subcommands.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate or publish the course catalog",
	}

	var validatePath string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check a catalog YAML file without starting the app",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateCatalog(cmd.Context(), cmd.OutOrStdout(), validatePath)
		},
	}
	validate.Flags().StringVar(&validatePath, "path", "", "catalog YAML file (defaults to the bundled catalog)")

	var publishPath string
	publish := &cobra.Command{
		Use:   "publish",
		Short: "Upload a catalog YAML file to Postgres and drop the Redis copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return publishCatalog(cmd.Context(), *configPath, publishPath)
		},
	}
	publish.Flags().StringVar(&publishPath, "path", "", "catalog YAML file (defaults to catalog.path from config)")

	cmd.AddCommand(validate, publish)
	return cmd
}

func validateCatalog(ctx context.Context, out io.Writer, path string) error {
	c, err := catalog.Load(ctx, file.NewCatalogLoader(path))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "catalog ok: %d courses, %d quizzes\n", c.Len(), c.QuizCount())
	return nil
}

func publishCatalog(ctx context.Context, configPath, path string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if path == "" {
		path = cfg.Catalog.Path
	}
	doc, err := file.NewCatalogLoader(path).Load(ctx)
	if err != nil {
		return err
	}

	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}
	b, err := connectBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	if err := pgcatalog.NewCatalogLoader(b.pool, cfg.Catalog.Document).Publish(ctx, doc); err != nil {
		return err
	}
	logger.Info("catalog published",
		zap.String("document", cfg.Catalog.Document),
		zap.Int("courses", len(doc.Courses)),
	)

	if b.redis != nil {
		if err := rediscatalog.NewCatalogCache(b.redis, nil, 0, logger).Invalidate(ctx); err != nil {
			return fmt.Errorf("invalidate cached catalog: %w", err)
		}
		logger.Info("cached catalog invalidated")
	}
	return nil
}
