package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/pkg/logger"
)

const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// created pairs a stored athlete with the draft it came from.
type created struct {
	athlete model.Athlete
	draft   Draft
}

// Run seeds the service at cfg.BaseURL and verifies the resulting ratings.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), ByStars: map[float64]int{}}
	log := logger.Get().Named("seed")
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	log.Info(ctx, "starting seed run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("athletes", cfg.NumAthletes),
		logger.Int("workers", cfg.Workers),
		logger.Any("seed", cfg.Seed),
	)

	client := NewClient(cfg.BaseURL, cfg.Secret, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	profiles := NewGenerator(cfg.Seed).Generate(cfg.NumAthletes)
	stats.Generated = len(profiles)
	if cfg.OutputFile != "" {
		if err := saveProfiles(cfg.OutputFile, profiles); err != nil {
			log.Warn(ctx, "failed to save generated profiles", logger.Error(err))
		}
	}

	athletes, err := submit(ctx, client, cfg, profiles, stats)
	if err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}
	if err := verify(ctx, client, cfg, athletes, stats); err != nil {
		return stats, err
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "seed run completed",
		logger.Int("created", stats.Created),
		logger.Int("conflicts", stats.Conflicts),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Duration("took", stats.Duration),
	)
	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d mismatches", ErrVerification, stats.Mismatches)
	}
	return stats, nil
}

func submit(ctx context.Context, client *Client, cfg Config, profiles []Profile, stats *Stats) ([]created, error) {
	var (
		mu  sync.Mutex
		out = make([]created, 0, len(profiles))
		log = logger.Get().Named("seed")
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, p := range profiles {
		g.Go(func() error {
			a, err := client.Create(gctx, p)

			mu.Lock()
			defer mu.Unlock()
			var se *statusError
			switch {
			case err == nil:
				stats.Created++
				stats.ByStars[a.StarRating]++
				out = append(out, created{athlete: a, draft: p.Draft})
			case errors.As(err, &se) && se.status == http.StatusConflict:
				stats.Conflicts++
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				stats.Failed++
				if cfg.Verbose {
					log.Warn(gctx, "create failed", logger.String("user_id", p.UserID), logger.Error(err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func verify(ctx context.Context, client *Client, cfg Config, athletes []created, stats *Stats) error {
	var mu sync.Mutex
	log := logger.Get().Named("seed")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, c := range athletes {
		g.Go(func() error {
			b, err := client.Breakdown(gctx, c.athlete.ID, c.athlete.UserID)
			if err != nil {
				return fmt.Errorf("breakdown %s: %w", c.athlete.ID, err)
			}
			problems := checkAthlete(c, b)

			mu.Lock()
			defer mu.Unlock()
			stats.Verified++
			if len(problems) > 0 {
				stats.Mismatches++
				log.Warn(gctx, "rating mismatch",
					logger.String("athlete_id", c.athlete.ID),
					logger.Any("problems", problems),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if cfg.TopN > 0 {
		page, err := client.Top(ctx, cfg.TopN)
		if err != nil {
			return fmt.Errorf("listing failed: %w", err)
		}
		if err := checkOrdering(page.Athletes); err != nil {
			stats.Mismatches++
			log.Warn(ctx, "listing order mismatch", logger.Error(err))
		}
	}
	return nil
}

func saveProfiles(path string, profiles []Profile) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
