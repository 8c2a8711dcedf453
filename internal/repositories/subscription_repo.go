package repositories

import (
	"context"

	"sabaibill/internal/models"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	GetCurrent(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error)
}

type subscriptionRepo struct {
	db DB
}

func NewSubscriptionRepo(db DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

// GetCurrent returns the company's most recent subscription record.
func (r *subscriptionRepo) GetCurrent(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error) {
	subscription := &models.Subscription{}
	query := `
		SELECT id, company_id, plan_name, status, start_date, end_date, created_at, updated_at
		FROM subscriptions
		WHERE company_id = $1
		ORDER BY start_date DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, companyID).Scan(&subscription.ID, &subscription.CompanyID, &subscription.PlanName, &subscription.Status, &subscription.StartDate, &subscription.EndDate, &subscription.CreatedAt, &subscription.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return subscription, nil
}
