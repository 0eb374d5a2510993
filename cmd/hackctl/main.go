// Command hackctl runs administrative tasks against the hackathon database:
// schema migrations, account creation and offline exports.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/yigit/hackathon/internal/app/models"
	"github.com/yigit/hackathon/internal/app/models/dto"
	appRepos "github.com/yigit/hackathon/internal/app/repositories"
	appServices "github.com/yigit/hackathon/internal/app/services"
	"github.com/yigit/hackathon/internal/bootstrap"
	"github.com/yigit/hackathon/internal/config"
	"github.com/yigit/hackathon/internal/db"
	pkgAuth "github.com/yigit/hackathon/internal/pkg/auth"
	"github.com/yigit/hackathon/internal/pkg/export"
	"github.com/yigit/hackathon/internal/pkg/logger"
)

// cliCaller stands in for an administrator session on the command line
var cliCaller = &models.Caller{Email: "hackctl", Role: models.RoleAdministrator}

func main() {
	app := &cli.App{
		Name:  "hackctl",
		Usage: "administrative tasks for the hackathon applications service",
		Commands: []*cli.Command{
			migrateCommand(),
			createUserCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("hackctl failed")
		os.Exit(1)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending database migrations",
		Action: func(c *cli.Context) error {
			cfg, lgr, pool, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer pool.Close()

			return bootstrap.RunMigrations(c.Context, cfg, pool, lgr)
		},
	}
}

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "create a reviewer or administrator account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"HACKCTL_PASSWORD"}},
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "role", Value: string(models.RoleReviewer), Usage: "REVIEWER or ADMINISTRATOR"},
		},
		Action: func(c *cli.Context) error {
			_, lgr, pool, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer pool.Close()

			// Tokens are never issued here, so the JWT service needs no secret
			authService := appServices.NewAuthService(appRepos.NewUserRepository(pool), pkgAuth.NewJWTService(pkgAuth.JWTConfig{}), lgr)
			user, err := authService.CreateUser(c.Context, nil, &dto.CreateUserRequest{
				Email:    c.String("email"),
				Password: c.String("password"),
				Name:     c.String("name"),
				Role:     models.RoleType(strings.ToUpper(c.String("role"))),
			}, true)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "created user %d (%s, %s)\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write applications as CSV or XLSX",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Value: "team", Usage: "team or school"},
			&cli.StringFlag{Name: "format", Value: string(export.FormatCSV), Usage: "csv or xlsx"},
			&cli.StringFlag{Name: "status", Usage: "PENDING, ACCEPTED or REJECTED"},
			&cli.StringFlag{Name: "starred", Usage: "true or false, both when empty"},
			&cli.StringFlag{Name: "search"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "file to write, stdout when empty"},
		},
		Action: func(c *cli.Context) error {
			format, err := export.ParseFormat(c.String("format"))
			if err != nil {
				return err
			}

			_, lgr, pool, err := connect(c.Context)
			if err != nil {
				return err
			}
			defer pool.Close()

			filter := dto.ApplicationFilter{
				Status:  models.ApplicationStatus(strings.ToUpper(c.String("status"))),
				Starred: strings.ToLower(c.String("starred")),
				Search:  c.String("search"),
			}

			// Exports never change review state, so no notifier is wired
			var table export.Table
			switch strings.ToLower(c.String("kind")) {
			case "team":
				svc := appServices.NewApplicationService(appRepos.NewApplicationRepository(pool), appRepos.NewEmailLogRepository(pool), nil, nil, nil, lgr)
				table, err = svc.Export(c.Context, cliCaller, filter)
			case "school":
				svc := appServices.NewSchoolApplicationService(appRepos.NewSchoolApplicationRepository(pool), appRepos.NewEmailLogRepository(pool), nil, lgr)
				table, err = svc.Export(c.Context, cliCaller, filter)
			default:
				return fmt.Errorf("unknown kind %q, expected team or school", c.String("kind"))
			}
			if err != nil {
				return err
			}

			out := c.App.Writer
			if path := c.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				defer f.Close()
				out = f
			}

			if err := export.Write(out, format, table); err != nil {
				return err
			}
			lgr.Info().Int("rows", len(table.Rows)).Str("format", string(format)).Msg("Export written")
			return nil
		},
	}
}

// connect loads configuration, configures logging to stderr and opens the pool
func connect(ctx context.Context) (*config.Config, zerolog.Logger, *pgxpool.Pool, error) {
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: true,
		Output: os.Stderr,
	})
	lgr := logger.WithComponent("hackctl")

	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	return cfg, lgr, database.Pool, nil
}
