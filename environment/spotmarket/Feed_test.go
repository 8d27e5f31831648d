package spotmarket

import (
	"math"
	"testing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	config := FeedConfig{
		Start:          100.0,
		Drift:          0.0002,
		Volatility:     0.008,
		CycleAmplitude: 0.03,
		CyclePeriod:    64.0,
	}

	var seed uint64 = 37
	first, err := NewFeed(config, seed)
	if err != nil {
		t.Fatalf("could not create feed: %v", err)
	}
	second, err := NewFeed(config, seed)
	if err != nil {
		t.Fatalf("could not create feed: %v", err)
	}

	firstPath := first.Generate(128)
	secondPath := second.Generate(128)
	for i := range firstPath {
		if firstPath[i] != secondPath[i] {
			t.Fatalf("equally seeded feeds diverged at %v \n\twant(%v)"+
				"\n\thave(%v)", i, firstPath[i], secondPath[i])
		}
	}
}

func TestGenerateStartsAtConfiguredPrice(t *testing.T) {
	config := FeedConfig{
		Start:          100.0,
		Drift:          0.0002,
		Volatility:     0.008,
		CycleAmplitude: 0.03,
		CyclePeriod:    64.0,
	}

	feed, err := NewFeed(config, 37)
	if err != nil {
		t.Fatalf("could not create feed: %v", err)
	}

	prices := feed.Generate(16)
	if math.Abs(prices[0]-config.Start) > 1e-9 {
		t.Errorf("unexpected starting price \n\twant(%v)\n\thave(%v)",
			config.Start, prices[0])
	}
	for i, price := range prices {
		if price <= 0 {
			t.Errorf("generated price at %v is not positive \n\thave(%v)",
				i, price)
		}
	}
}

func TestFeedConfigValidate(t *testing.T) {
	valid := FeedConfig{
		Start:          100.0,
		Drift:          0.0002,
		Volatility:     0.008,
		CycleAmplitude: 0.03,
		CyclePeriod:    64.0,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error validating a legal config: %v", err)
	}

	invalid := []FeedConfig{
		{Start: 0, Volatility: 0.008},
		{Start: 100.0, Volatility: -0.008},
		{Start: 100.0, Volatility: 0.008, CycleAmplitude: 0.03,
			CyclePeriod: 0},
	}
	for i, config := range invalid {
		if err := config.Validate(); err == nil {
			t.Errorf("expected an error validating config %v", i)
		}
	}
}
