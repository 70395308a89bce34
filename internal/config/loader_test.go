package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/flagmap/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.MinCategorySupport, convey.ShouldEqual, 50)
				convey.So(cfg.Serve, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FLAGMAP_ADDR", ":8080")
			_ = os.Setenv("FLAGMAP_WORKER_COUNT", "16")
			_ = os.Setenv("FLAGMAP_TIE_BREAK", "earlier")
			_ = os.Setenv("FLAGMAP_SERVE", "true")
			_ = os.Setenv("FLAGMAP_POSTGRES_DSN", "postgres://localhost/flagmap")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.TieBreak, convey.ShouldEqual, "earlier")
				convey.So(cfg.Serve, convey.ShouldBeTrue)
				convey.So(cfg.PostgresDSN, convey.ShouldEqual, "postgres://localhost/flagmap")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
# inputs
data_dir: "/srv/flagmap"
drives_file: "charts.csv"
min_category_support: 10
worker_count: 24
unbounded: drop
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FLAGMAP_CONFIG", tmpFile)
			_ = os.Setenv("FLAGMAP_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.MinCategorySupport, convey.ShouldEqual, 10)
				convey.So(cfg.Unbounded, convey.ShouldEqual, "drop")
				convey.So(cfg.Path(cfg.DrivesFile), convey.ShouldEqual, "/srv/flagmap/charts.csv")
				convey.So(cfg.Path(cfg.GamesFile), convey.ShouldEqual, "/srv/flagmap/games.csv")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("FLAGMAP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("FLAGMAP_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When serving with an empty addr", func() {
			_ = os.Setenv("FLAGMAP_SERVE", "true")
			_ = os.Setenv("FLAGMAP_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FLAGMAP_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FLAGMAP_CONFIG",
		"FLAGMAP_ADDR",
		"FLAGMAP_SERVE",
		"FLAGMAP_QUEUE_SIZE",
		"FLAGMAP_WORKER_COUNT",
		"FLAGMAP_TIE_BREAK",
		"FLAGMAP_POSTGRES_DSN",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "flagmap-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
