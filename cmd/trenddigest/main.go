package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"TrendDigest/internal/app"
	"TrendDigest/internal/config"
	"TrendDigest/internal/logging"
)

func main() {
	godotenv.Load()

	cliApp := &cli.App{
		Name:  "trenddigest",
		Usage: "collect AI/LLM updates, publish daily digests and weekly summaries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file",
				EnvVars: []string{"TREND_DIGEST_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "daily",
				Usage: "run one daily digest batch and exit",
				Action: func(c *cli.Context) error {
					application, cleanup := buildApp(c)
					defer cleanup()
					return application.RunDaily(c.Context)
				},
			},
			{
				Name:  "weekly",
				Usage: "run one weekly summary and exit",
				Action: func(c *cli.Context) error {
					application, cleanup := buildApp(c)
					defer cleanup()
					return application.RunWeekly(c.Context)
				},
			},
			{
				Name:  "serve",
				Usage: "run both pipelines on their cron schedules",
				Action: func(c *cli.Context) error {
					application, cleanup := buildApp(c)
					defer cleanup()
					return application.Serve(c.Context)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func buildApp(c *cli.Context) (*app.Application, func()) {
	var cfg config.Config
	if path := c.String("config"); path != "" {
		cfg = config.LoadFrom(path)
	} else {
		cfg = config.Load()
	}

	logger := logging.New(cfg.Logging.Level)
	application := app.New(context.Background(), cfg, logger)
	return application, application.Close
}
