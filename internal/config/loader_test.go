package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/recipebox/internal/config"
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
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ItemsPerPage, convey.ShouldEqual, 6)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RECIPEBOX_ADDR", ":8080")
			_ = os.Setenv("RECIPEBOX_ITEMS_PER_PAGE", "9")
			_ = os.Setenv("RECIPEBOX_DATA_DIR", "/var/lib/recipebox")
			_ = os.Setenv("RECIPEBOX_LOAD_DELAY_MS", "0")
			_ = os.Setenv("RECIPEBOX_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ItemsPerPage, convey.ShouldEqual, 9)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/recipebox")
				convey.So(cfg.LoadDelayMS, convey.ShouldEqual, 0)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When list values come from environment variables", func() {
			_ = os.Setenv("RECIPEBOX_PAGE_SIZES", "4, 8,12")
			_ = os.Setenv("RECIPEBOX_ITEMS_PER_PAGE", "8")
			_ = os.Setenv("RECIPEBOX_CORS_ALLOWED_ORIGINS", "https://a.example")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are split on commas and replace the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PageSizes, convey.ShouldResemble, []int{4, 8, 12})
				convey.So(cfg.ItemsPerPage, convey.ShouldEqual, 8)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example"})
			})
		})

		convey.Convey("When a shorter page size list comes from the environment", func() {
			_ = os.Setenv("RECIPEBOX_PAGE_SIZES", "6,9")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then no default entry is left behind", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.PageSizes, convey.ShouldResemble, []int{6, 9})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
log_format: json
items_per_page: 18
page_sizes: [6, 9, 18]
max_sessions: 50
`)
			_ = os.Setenv("RECIPEBOX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ItemsPerPage, convey.ShouldEqual, 18)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
				convey.So(cfg.LoadDelayMS, convey.ShouldEqual, 250)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
max_sessions: 50
`)
			_ = os.Setenv("RECIPEBOX_CONFIG", tmpFile)
			_ = os.Setenv("RECIPEBOX_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("RECIPEBOX_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RECIPEBOX_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("RECIPEBOX_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the page size is not one of the offered sizes", func() {
			_ = os.Setenv("RECIPEBOX_ITEMS_PER_PAGE", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("RECIPEBOX_MAX_SESSIONS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"RECIPEBOX_CONFIG",
		"RECIPEBOX_ADDR",
		"RECIPEBOX_ITEMS_PER_PAGE",
		"RECIPEBOX_DATA_DIR",
		"RECIPEBOX_LOAD_DELAY_MS",
		"RECIPEBOX_CORS_ALLOWED_ORIGINS",
		"RECIPEBOX_MAX_SESSIONS",
		"RECIPEBOX_PAGE_SIZES",
	} {
		_ = os.Unsetenv(name)
	}
}
