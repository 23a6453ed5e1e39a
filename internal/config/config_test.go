package config_test

import (
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/okian/prospect/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config", t, func() {
		cfg := config.New()

		convey.Convey("Then it has sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DBDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.BackfillWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.BackfillQueueSize, convey.ShouldEqual, 1_024)
			convey.So(cfg.MaxPageLimit, convey.ShouldEqual, 100)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "prospect")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then it carries no usable auth secret", func() {
			convey.So(cfg.AuthSecret, convey.ShouldBeEmpty)
			convey.So(errors.Is(cfg.CheckAuthSecret(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_CheckAuthSecret(t *testing.T) {
	convey.Convey("Given auth secrets of various lengths", t, func() {
		cfg := config.New()

		for _, weak := range []string{"", "change-me", strings.Repeat("k", config.MinAuthSecretLength-1)} {
			cfg.AuthSecret = weak
			convey.So(errors.Is(cfg.CheckAuthSecret(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		}

		cfg.AuthSecret = strings.Repeat("k", config.MinAuthSecretLength)
		convey.So(cfg.CheckAuthSecret(), convey.ShouldBeNil)
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":       func(c *config.Config) { c.Addr = "" },
			"unknown driver":   func(c *config.Config) { c.DBDriver = "oracle" },
			"sql without dsn":  func(c *config.Config) { c.DBDriver = config.DriverPostgres },
			"zero page limit":  func(c *config.Config) { c.MaxPageLimit = 0 },
			"zero workers":     func(c *config.Config) { c.BackfillWorkers = 0 },
			"zero queue":       func(c *config.Config) { c.BackfillQueueSize = 0 },
			"zero page size":   func(c *config.Config) { c.BackfillPageSize = 0 },
			"zero dedupe":      func(c *config.Config) { c.DedupeSize = 0 },
			"negative timeout": func(c *config.Config) { c.RequestTimeoutMS = -1 },
			"bad namespace":    func(c *config.Config) { c.MetricsNamespace = "pro-spect" },
			"empty namespace":  func(c *config.Config) { c.MetricsNamespace = "" },
			"bad subsystem":    func(c *config.Config) { c.MetricsSubsystem = "9lives" },
			"unsorted buckets": func(c *config.Config) { c.MetricsLatencyBucketsMS = []float64{5, 1} },
		}
		for name, mutate := range cases {
			convey.Convey("When "+name, func() {
				cfg := config.New()
				mutate(cfg)

				convey.Convey("Then Validate returns ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When a SQL driver has a dsn", func() {
			cfg := config.New()
			cfg.DBDriver = config.DriverSQLite
			cfg.DBDSN = "file::memory:"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
