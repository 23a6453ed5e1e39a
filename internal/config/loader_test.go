package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/prospect/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then defaults are returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DBDriver, convey.ShouldEqual, config.DriverMemory)
			})
		})

		convey.Convey("When environment variables are set", func() {
			_ = os.Setenv("PROSPECT_ADDR", ":8080")
			_ = os.Setenv("PROSPECT_BACKFILL_WORKERS", "3")
			_ = os.Setenv("PROSPECT_DB_DRIVER", "sqlite")
			_ = os.Setenv("PROSPECT_DB_DSN", "file:prospect.db")
			_ = os.Setenv("PROSPECT_CORS_ORIGINS", "https://a.example,https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.BackfillWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.DBDriver, convey.ShouldEqual, config.DriverSQLite)
				convey.So(cfg.DBDSN, convey.ShouldEqual, "file:prospect.db")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When a YAML file is given", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "prospect.yaml")
			body := "addr: \":7070\"\nlog_level: debug\nmax_page_limit: 25\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			_ = os.Setenv(config.EnvFile, path)

			convey.Convey("Then file values apply", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.MaxPageLimit, convey.ShouldEqual, 25)
			})

			convey.Convey("Then env still wins over the file", func() {
				_ = os.Setenv("PROSPECT_ADDR", ":6060")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.MaxPageLimit, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.LoadFile(ctx, "/nonexistent/prospect.yaml")

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded values are invalid", func() {
			_ = os.Setenv("PROSPECT_DB_DRIVER", "oracle")
			_, err := config.Load(ctx)

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, config.EnvPrefix) {
			_ = os.Unsetenv(key)
		}
	}
}
