package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
)

const incrementRulesKey = "bid_increment_rules"

// BidIncrementPolicy answers what the next acceptable bid is.
type BidIncrementPolicy interface {
	GetIncrement(amount float64) float64
	GetMinimumBid(currentAmount float64) float64
}

type incrementRules struct {
	Rules map[string]float64 `json:"rules"`
}

// IncrementPolicy holds the banded minimum-increment table for vehicle
// auctions, persisted in Redis so every instance applies the same bands.
type IncrementPolicy struct {
	client *redis.Client
	rules  *incrementRules
}

func NewIncrementPolicy(client *redis.Client) *IncrementPolicy {
	return &IncrementPolicy{
		client: client,
	}
}

func (p *IncrementPolicy) LoadRules(ctx context.Context) error {
	data, err := p.client.Get(ctx, incrementRulesKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Seed defaults on first boot; admins adjust through Redis directly.
			p.rules = &incrementRules{
				Rules: map[string]float64{
					"0-1000":     25.0,
					"1000-10000": 50.0,
					"10000+":     100.0,
				},
			}
			return p.saveRules(ctx)
		}
		return err
	}

	var rules incrementRules
	if err := json.Unmarshal([]byte(data), &rules); err != nil {
		return err
	}

	p.rules = &rules
	return nil
}

func (p *IncrementPolicy) saveRules(ctx context.Context) error {
	data, err := json.Marshal(p.rules)
	if err != nil {
		return err
	}

	return p.client.Set(ctx, incrementRulesKey, string(data), 0).Err()
}

func (p *IncrementPolicy) GetMinimumBid(currentAmount float64) float64 {
	return currentAmount + p.GetIncrement(currentAmount)
}

func (p *IncrementPolicy) GetIncrement(amount float64) float64 {
	if p.rules == nil {
		return 50.0 // default
	}
	if amount < 1000 {
		return p.rules.Rules["0-1000"]
	} else if amount < 10000 {
		return p.rules.Rules["1000-10000"]
	} else {
		return p.rules.Rules["10000+"]
	}
}
