package config

import "time"

type Recount struct {
	ThresholdDays int           `env:"RECOUNT_THRESHOLD_DAYS" envDefault:"30"`
	Interval      time.Duration `env:"RECOUNT_INTERVAL" envDefault:"1h"`
}
