package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/mentorcircle/mentorcircle-api/config"
	"github.com/mentorcircle/mentorcircle-api/internal/domain/entity"
	pginfra "github.com/mentorcircle/mentorcircle-api/internal/infrastructure/postgres"
	"github.com/mentorcircle/mentorcircle-api/pkg/helpers"
)

// The reconciler sweeps approved applications whose mentor profile was never
// materialized (provisioning failed at approval time, or the applicant signed
// up after being approved) and retries the idempotent provisioning step.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-reconciler", cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	apps := pginfra.NewApplicationRepository(pool)
	mentors := pginfra.NewMentorProfileRepository(pool)

	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		candidates, err := apps.ApprovedAwaitingProvisioning(ctx, cfg.ReconcilerBatch)
		if err != nil {
			logger.WithError(err).Error("reconciler sweep failed")
			return
		}
		if len(candidates) == 0 {
			return
		}
		logger.WithField("count", len(candidates)).Info("provisioning sweep")

		for _, cand := range candidates {
			app, err := apps.GetByID(ctx, cand.ApplicationID)
			if err != nil {
				logger.WithError(err).WithField("application_id", cand.ApplicationID).Warn("candidate load failed")
				continue
			}
			created, err := mentors.CreateIfAbsent(ctx, &entity.MentorProfile{
				UserID:    cand.UserID,
				Expertise: app.Expertise,
			})
			if err != nil {
				logger.WithError(err).WithField("application_id", cand.ApplicationID).Warn("provisioning retry failed")
				continue
			}
			if created {
				logger.WithField("application_id", cand.ApplicationID).Info("mentor profile provisioned by reconciler")
				_ = apps.AppendNote(ctx, cand.ApplicationID, entity.Note{
					At:   time.Now().UTC(),
					By:   "system",
					Text: "mentor profile provisioned by reconciler",
				})
			}
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReconcilerSchedule, sweep); err != nil {
		log.Fatalf("invalid reconciler schedule %q: %v", cfg.ReconcilerSchedule, err)
	}
	c.Start()
	logger.WithField("schedule", cfg.ReconcilerSchedule).Info("reconciler started")

	// Run one sweep immediately so a restart does not wait a full interval
	sweep()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cronCtx := c.Stop()
	<-cronCtx.Done()
	logger.Info("reconciler stopped")
}
