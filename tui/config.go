package tui

import "time"

type Config struct {
	Theme                string        `yaml:"theme"`
	ReplaceHomeWithTilde bool          `yaml:"replace_home_with_tilde"`
	RefreshInterval      time.Duration `yaml:"refresh_interval"`
}

func DefaultConfig() Config {
	return Config{
		Theme:                defaultThemeName,
		ReplaceHomeWithTilde: true,
		RefreshInterval:      150 * time.Millisecond,
	}
}
