package config

import (
	"fmt"
	"time"
)

// File is the on-disk configuration (.lingoscan or config.yaml).
// Every field is optional; unset fields keep the value already in Config.
type File struct {
	Server             string       `yaml:"server,omitempty"`
	Timeout            string       `yaml:"timeout,omitempty"`
	ExportDir          string       `yaml:"export_dir,omitempty"`
	PrimaryGroupPolicy string       `yaml:"primary_group_policy,omitempty"`
	Service            *ServiceFile `yaml:"service,omitempty"`
}

// ServiceFile holds the analysis service section of the config file.
type ServiceFile struct {
	Listen         string   `yaml:"listen,omitempty"`
	Concurrency    *int     `yaml:"concurrency,omitempty"`
	FetchTimeout   string   `yaml:"fetch_timeout,omitempty"`
	CrawlTimeout   string   `yaml:"crawl_timeout,omitempty"`
	MaxPages       *int     `yaml:"max_pages,omitempty"`
	MaxDepth       *int     `yaml:"max_depth,omitempty"`
	Delay          string   `yaml:"delay,omitempty"`
	UserAgent      string   `yaml:"user_agent,omitempty"`
	RespectRobots  *bool    `yaml:"respect_robots,omitempty"`
	DB             string   `yaml:"db,omitempty"`
	IgnorePatterns []string `yaml:"ignore_patterns,omitempty"`
	FollowPatterns []string `yaml:"follow_patterns,omitempty"`
}

// ApplyFile copies the values set in f into c.
// Durations use Go syntax ("30s", "5m").
func (c *Config) ApplyFile(f *File) error {
	if f == nil {
		return nil
	}

	if f.Server != "" {
		c.ServerURL = f.Server
	}
	if err := setDuration(&c.Timeout, f.Timeout, "timeout"); err != nil {
		return err
	}
	if f.ExportDir != "" {
		c.ExportDir = f.ExportDir
	}
	if f.PrimaryGroupPolicy != "" {
		c.PrimaryGroupPolicy = f.PrimaryGroupPolicy
	}

	s := f.Service
	if s == nil {
		return nil
	}
	if s.Listen != "" {
		c.ListenAddr = s.Listen
	}
	if s.Concurrency != nil {
		c.Concurrency = *s.Concurrency
	}
	if err := setDuration(&c.FetchTimeout, s.FetchTimeout, "service.fetch_timeout"); err != nil {
		return err
	}
	if err := setDuration(&c.CrawlTimeout, s.CrawlTimeout, "service.crawl_timeout"); err != nil {
		return err
	}
	if s.MaxPages != nil {
		c.CrawlMaxPages = *s.MaxPages
	}
	if s.MaxDepth != nil {
		c.CrawlMaxDepth = *s.MaxDepth
	}
	if err := setDuration(&c.CrawlDelay, s.Delay, "service.delay"); err != nil {
		return err
	}
	if s.UserAgent != "" {
		c.UserAgent = s.UserAgent
	}
	if s.RespectRobots != nil {
		c.RespectRobots = *s.RespectRobots
	}
	if s.DB != "" {
		c.SaveToDB = true
		c.DBDir = s.DB
	}
	if len(s.IgnorePatterns) > 0 {
		c.IgnorePatterns = s.IgnorePatterns
	}
	if len(s.FollowPatterns) > 0 {
		c.FollowPatterns = s.FollowPatterns
	}
	return nil
}

func setDuration(dst *time.Duration, value, key string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
