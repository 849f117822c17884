package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// SweepConfig sets how often the two reconciliation sweeps run and how
// long a single run may take.  A zero interval disables that sweep.
type SweepConfig struct {
	ContractInterval time.Duration `envconfig:"CONTRACT_SWEEP_INTERVAL" default:"1h"`
	AwardInterval    time.Duration `envconfig:"AWARD_SWEEP_INTERVAL" default:"30m"`
	Timeout          time.Duration `envconfig:"SWEEP_TIMEOUT" default:"2m"`
	RunOnStart       bool          `envconfig:"SWEEP_RUN_ON_START" default:"true"`
}

func LoadSweepConfig() (SweepConfig, error) {
	var c SweepConfig
	err := envconfig.Process("", &c)
	return c, err
}
