package srs

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Policy holds the tunable constants of the scheduler.
// Zero-valued fields are replaced with DefaultPolicy values by NewScheduler.
type Policy struct {
	InitialEase     float64       `koanf:"initial_ease" json:"initialEase" validate:"gte=1.3"`
	AgainPenalty    float64       `koanf:"again_penalty" json:"againPenalty" validate:"gte=0"`
	HardPenalty     float64       `koanf:"hard_penalty" json:"hardPenalty" validate:"gte=0"`
	EasyBonus       float64       `koanf:"easy_bonus" json:"easyBonus" validate:"gte=0"`
	HardMultiplier  float64       `koanf:"hard_multiplier" json:"hardMultiplier" validate:"gte=1"`
	EasyMultiplier  float64       `koanf:"easy_multiplier" json:"easyMultiplier" validate:"gte=1"`
	EasyFloorDays   int           `koanf:"easy_floor_days" json:"easyFloorDays" validate:"gte=1"`
	MaxIntervalDays int           `koanf:"max_interval_days" json:"maxIntervalDays" validate:"gtefield=EasyFloorDays"`
	HardStep        time.Duration `koanf:"hard_step" json:"hardStep"`
	GoodStep        time.Duration `koanf:"good_step" json:"goodStep"`
}

// DefaultPolicy returns the SM-2 style constants used by the four review buttons:
// Again "<1m", Hard "<6m", Good "<10m" for new cards and an Easy floor of 4 days.
func DefaultPolicy() Policy {
	return Policy{
		InitialEase:     2.5,
		AgainPenalty:    0.2,
		HardPenalty:     0.15,
		EasyBonus:       0.15,
		HardMultiplier:  1.2,
		EasyMultiplier:  1.3,
		EasyFloorDays:   4,
		MaxIntervalDays: 36500,
		HardStep:        6 * time.Minute,
		GoodStep:        10 * time.Minute,
	}
}

var validate = validator.New()

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.InitialEase == 0 {
		p.InitialEase = d.InitialEase
	}
	if p.AgainPenalty == 0 {
		p.AgainPenalty = d.AgainPenalty
	}
	if p.HardPenalty == 0 {
		p.HardPenalty = d.HardPenalty
	}
	if p.EasyBonus == 0 {
		p.EasyBonus = d.EasyBonus
	}
	if p.HardMultiplier == 0 {
		p.HardMultiplier = d.HardMultiplier
	}
	if p.EasyMultiplier == 0 {
		p.EasyMultiplier = d.EasyMultiplier
	}
	if p.EasyFloorDays == 0 {
		p.EasyFloorDays = d.EasyFloorDays
	}
	if p.MaxIntervalDays == 0 {
		p.MaxIntervalDays = d.MaxIntervalDays
	}
	if p.HardStep == 0 {
		p.HardStep = d.HardStep
	}
	if p.GoodStep == 0 {
		p.GoodStep = d.GoodStep
	}
	return p
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid scheduling policy: %w", err)
	}
	// Learning steps must stay below a day, otherwise they overlap graduated intervals.
	for name, step := range map[string]time.Duration{"hard_step": p.HardStep, "good_step": p.GoodStep} {
		if step < 0 || step >= 24*time.Hour {
			return fmt.Errorf("invalid scheduling policy: %s %s must be in [0, 24h)", name, step)
		}
	}
	return nil
}
