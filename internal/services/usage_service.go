package services

import (
	"context"
	"log"
	"time"

	"sabaibill/internal/billing"
	"sabaibill/internal/caching"
	"sabaibill/internal/models"
	"sabaibill/internal/repositories"

	"github.com/google/uuid"
)

const usageCacheTTL = 5 * time.Minute

// PlanConfig describes a subscription plan's document quotas. Nil limits
// mean unlimited.
type PlanConfig struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	InvoiceLimit   *int   `json:"invoice_limit"`
	QuotationLimit *int   `json:"quotation_limit"`
}

func intPtr(v int) *int { return &v }

var availablePlans = map[string]PlanConfig{
	"free": {
		ID:             "free",
		Name:           "Free",
		InvoiceLimit:   intPtr(10),
		QuotationLimit: intPtr(10),
	},
	"standard": {
		ID:             "standard",
		Name:           "Standard",
		InvoiceLimit:   intPtr(100),
		QuotationLimit: intPtr(100),
	},
	"pro": {
		ID:   "pro",
		Name: "Pro",
	},
}

// UsageService gates document issuance on the company's plan quota and
// subscription status, and meters issued documents per calendar month.
type UsageService interface {
	// CanCreate returns nil when the company may issue another document of
	// the kind this period. It fails with billing.ErrSubscriptionInactive or
	// billing.ErrLimitExceeded, making this a combined authorization and
	// quota check.
	CanCreate(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind) error
	// Increment bumps the current-period counter. Counters are never
	// decremented; cancelling a document does not free quota.
	Increment(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind) error
	Summary(ctx context.Context, companyID uuid.UUID) (*models.UsageSummary, error)
	RefreshCache(ctx context.Context, companyID uuid.UUID) error
}

type usageService struct {
	usageRepo        repositories.UsageRepository
	subscriptionRepo repositories.SubscriptionRepository
	cacheSvc         caching.CacheService
}

func NewUsageService(usageRepo repositories.UsageRepository, subscriptionRepo repositories.SubscriptionRepository, cacheSvc caching.CacheService) UsageService {
	return &usageService{
		usageRepo:        usageRepo,
		subscriptionRepo: subscriptionRepo,
		cacheSvc:         cacheSvc,
	}
}

func currentPeriod() string {
	return time.Now().Format("2006-01")
}

// planFor resolves a plan by name, falling back to free-plan quotas for
// unrecognized plan names.
func planFor(planName string) PlanConfig {
	if plan, ok := availablePlans[planName]; ok {
		return plan
	}
	return availablePlans["free"]
}

func subscriptionUsable(sub *models.Subscription) bool {
	if sub.Status != models.SubscriptionTrial && sub.Status != models.SubscriptionActive {
		return false
	}
	if sub.EndDate != nil && sub.EndDate.Before(time.Now()) {
		return false
	}
	return true
}

func (s *usageService) currentCounter(ctx context.Context, companyID uuid.UUID, monthYear string) (*models.UsageCounter, error) {
	if s.cacheSvc != nil {
		if counter, err := s.cacheSvc.GetUsage(ctx, companyID, monthYear); err == nil {
			return counter, nil
		}
	}

	counter, err := s.usageRepo.Get(ctx, companyID, monthYear)
	if err != nil {
		return nil, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.SetUsage(ctx, companyID, counter, usageCacheTTL); err != nil {
			log.Printf("Failed to cache usage counter for company %s: %v", companyID, err)
		}
	}
	return counter, nil
}

func (s *usageService) CanCreate(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind) error {
	sub, err := s.subscriptionRepo.GetCurrent(ctx, companyID)
	if err != nil {
		return billing.ErrSubscriptionInactive
	}
	if !subscriptionUsable(sub) {
		return billing.ErrSubscriptionInactive
	}

	plan := planFor(sub.PlanName)
	var limit *int
	if kind == models.KindInvoice {
		limit = plan.InvoiceLimit
	} else {
		limit = plan.QuotationLimit
	}
	if limit == nil {
		return nil
	}

	counter, err := s.currentCounter(ctx, companyID, currentPeriod())
	if err != nil {
		return err
	}

	count := counter.QuotationCount
	if kind == models.KindInvoice {
		count = counter.InvoiceCount
	}
	if count >= *limit {
		return billing.ErrLimitExceeded
	}
	return nil
}

func (s *usageService) Increment(ctx context.Context, companyID uuid.UUID, kind models.DocumentKind) error {
	monthYear := currentPeriod()
	if err := s.usageRepo.Increment(ctx, companyID, monthYear, kind); err != nil {
		return err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.DeleteUsage(ctx, companyID, monthYear); err != nil {
			log.Printf("Failed to invalidate usage cache for company %s: %v", companyID, err)
		}
	}
	return nil
}

func (s *usageService) Summary(ctx context.Context, companyID uuid.UUID) (*models.UsageSummary, error) {
	counter, err := s.currentCounter(ctx, companyID, currentPeriod())
	if err != nil {
		return nil, err
	}

	summary := &models.UsageSummary{
		MonthYear:      counter.MonthYear,
		InvoiceCount:   counter.InvoiceCount,
		QuotationCount: counter.QuotationCount,
	}

	if sub, err := s.subscriptionRepo.GetCurrent(ctx, companyID); err == nil {
		plan := planFor(sub.PlanName)
		summary.InvoiceLimit = plan.InvoiceLimit
		summary.QuotationLimit = plan.QuotationLimit
	}
	return summary, nil
}

// RefreshCache re-reads the current-period counter into the cache. Called
// by the background scheduler.
func (s *usageService) RefreshCache(ctx context.Context, companyID uuid.UUID) error {
	monthYear := currentPeriod()
	counter, err := s.usageRepo.Get(ctx, companyID, monthYear)
	if err != nil {
		return err
	}
	if s.cacheSvc == nil {
		return nil
	}
	return s.cacheSvc.SetUsage(ctx, companyID, counter, usageCacheTTL)
}

// AvailablePlans returns a copy of the plan registry.
func AvailablePlans() map[string]PlanConfig {
	result := make(map[string]PlanConfig, len(availablePlans))
	for k, v := range availablePlans {
		result[k] = v
	}
	return result
}
