package userauth

import "time"

// StaticConfig is a plain-values Config implementation for wiring and tests.
type StaticConfig struct {
	SigningKey           string
	SigningMethod        string
	AccessTokenLifetime  time.Duration
	MissionTokenLifetime time.Duration
	ReaperInterval       time.Duration
}

var _ Config = (*StaticConfig)(nil)

func (c StaticConfig) GetSigningKey() string { return c.SigningKey }

func (c StaticConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c StaticConfig) GetAccessTokenLifetime() time.Duration {
	if c.AccessTokenLifetime == 0 {
		return 2 * time.Hour
	}
	return c.AccessTokenLifetime
}

func (c StaticConfig) GetMissionTokenLifetime() time.Duration {
	if c.MissionTokenLifetime == 0 {
		return 2 * time.Hour
	}
	return c.MissionTokenLifetime
}

func (c StaticConfig) GetReaperInterval() time.Duration {
	if c.ReaperInterval == 0 {
		return 7 * 24 * time.Hour
	}
	return c.ReaperInterval
}
