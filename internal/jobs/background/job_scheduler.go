package background

import (
	"context"
	"log"
	"sync"
	"time"

	"sabaibill/internal/repositories"
	"sabaibill/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the periodic maintenance work: keeping the cached
// usage counters warm so the quota gate rarely hits the database.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	usageSvc    services.UsageService
	companyRepo repositories.CompanyRepository
	jobs        map[string]gocron.Job
	mu          sync.RWMutex
}

func NewJobScheduler(usageSvc services.UsageService, companyRepo repositories.CompanyRepository) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		usageSvc:    usageSvc,
		companyRepo: companyRepo,
		jobs:        make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	usageJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.refreshUsageCounters),
		gocron.WithName("usage-cache-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create usage refresh job: %v", err)
	} else {
		js.mu.Lock()
		js.jobs["usage-cache-refresh"] = usageJob
		js.mu.Unlock()
	}
}

func (js *JobScheduler) refreshUsageCounters() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ids, err := js.companyRepo.ListIDs(ctx)
	if err != nil {
		log.Printf("usage refresh: list companies: %v", err)
		return
	}

	refreshed := 0
	for _, id := range ids {
		if err := js.usageSvc.RefreshCache(ctx, id); err != nil {
			log.Printf("usage refresh for company %s: %v", id, err)
			continue
		}
		refreshed++
	}
	log.Printf("usage refresh: warmed %d of %d companies", refreshed, len(ids))
}
