package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"sabaibill/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts hot read paths: the current-period usage counter
// consumed by the quota gate on every issue, and company settings read on
// every document save. Both are invalidated on write.
type CacheService interface {
	GetUsage(ctx context.Context, companyID uuid.UUID, monthYear string) (*models.UsageCounter, error)
	SetUsage(ctx context.Context, companyID uuid.UUID, counter *models.UsageCounter, ttl time.Duration) error
	DeleteUsage(ctx context.Context, companyID uuid.UUID, monthYear string) error

	GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error)
	SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error
	DeleteCompany(ctx context.Context, companyID uuid.UUID) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisClient accepts either a bare host:port or a redis:// URL address.
// URL-form addresses go through redis.ParseURL so embedded credentials and
// db selection are honored; explicit password/db arguments fill in whatever
// the URL leaves unset. A failed ping is logged, not fatal; the service
// degrades to direct database reads.
func NewRedisClient(addr, password string, db int) *redis.Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("WARN: invalid Redis URL %q: %v", addr, err)
		} else {
			opts = parsed
			if opts.Password == "" {
				opts.Password = password
			}
			if opts.DB == 0 {
				opts.DB = db
			}
		}
	}

	client := redis.NewClient(opts)

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, opts.Addr)
	}

	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func usageKey(companyID uuid.UUID, monthYear string) string {
	return fmt.Sprintf("usage:%s:%s", companyID, monthYear)
}

func companyKey(companyID uuid.UUID) string {
	return fmt.Sprintf("company:%s", companyID)
}

func (s *redisCacheService) GetUsage(ctx context.Context, companyID uuid.UUID, monthYear string) (*models.UsageCounter, error) {
	data, err := s.client.Get(ctx, usageKey(companyID, monthYear)).Bytes()
	if err != nil {
		return nil, err
	}
	counter := &models.UsageCounter{}
	if err := json.Unmarshal(data, counter); err != nil {
		return nil, err
	}
	return counter, nil
}

func (s *redisCacheService) SetUsage(ctx context.Context, companyID uuid.UUID, counter *models.UsageCounter, ttl time.Duration) error {
	data, err := json.Marshal(counter)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, usageKey(companyID, counter.MonthYear), data, ttl).Err()
}

func (s *redisCacheService) DeleteUsage(ctx context.Context, companyID uuid.UUID, monthYear string) error {
	return s.client.Del(ctx, usageKey(companyID, monthYear)).Err()
}

func (s *redisCacheService) GetCompany(ctx context.Context, companyID uuid.UUID) (*models.Company, error) {
	data, err := s.client.Get(ctx, companyKey(companyID)).Bytes()
	if err != nil {
		return nil, err
	}
	company := &models.Company{}
	if err := json.Unmarshal(data, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *redisCacheService) SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error {
	data, err := json.Marshal(company)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, companyKey(company.ID), data, ttl).Err()
}

func (s *redisCacheService) DeleteCompany(ctx context.Context, companyID uuid.UUID) error {
	return s.client.Del(ctx, companyKey(companyID)).Err()
}
