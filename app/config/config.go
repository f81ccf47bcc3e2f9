package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type MatcherCfg struct {
	MaxCandidates int `yaml:"max_candidates" json:"max_candidates"`
	Suggestions   int `yaml:"suggestions" json:"suggestions"`
}

type SessionCfg struct {
	Capacity int `yaml:"capacity" json:"capacity"`
	PageSize int `yaml:"page_size" json:"page_size"`
}

type DataCfg struct {
	Root         string `yaml:"root" json:"root"`
	PackLayout   string `yaml:"pack_layout" json:"pack_layout"`
	FetchTimeout string `yaml:"fetch_timeout" json:"fetch_timeout"`
	DataVersion  string `yaml:"data_version" json:"data_version"`
}

type BackendCfg struct {
	Kind  string `yaml:"kind" json:"kind"`
	DSN   string `yaml:"dsn" json:"dsn"`
	Table string `yaml:"table" json:"table"`
}

type LookupCfg struct {
	Data    DataCfg    `yaml:"data" json:"data"`
	Matcher MatcherCfg `yaml:"matcher" json:"matcher"`
	Session SessionCfg `yaml:"session" json:"session"`
	Backend BackendCfg `yaml:"backend" json:"backend"`
}

// C cấu hình tra cứu đang dùng
var C = Defaults()

// Defaults giá trị mặc định
func Defaults() LookupCfg {
	return LookupCfg{
		Data: DataCfg{
			Root:         "./data",
			PackLayout:   "auto",
			FetchTimeout: "15s",
			DataVersion:  "v1",
		},
		Matcher: MatcherCfg{MaxCandidates: 10, Suggestions: 3},
		Session: SessionCfg{Capacity: 1024, PageSize: 100},
		Backend: BackendCfg{Kind: "pack", Table: "siniestros"},
	}
}

func Load(path string) error {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return err
	}
	applyEnv(&cfg)
	C = cfg
	return nil
}

// ENV overrides
func applyEnv(cfg *LookupCfg) {
	if v := os.Getenv("PACK_LAYOUT"); v != "" {
		cfg.Data.PackLayout = v
	}
	if v := os.Getenv("LOOKUP_BACKEND"); v != "" {
		cfg.Backend.Kind = v
	}
	if v := os.Getenv("LOOKUP_DSN"); v != "" {
		cfg.Backend.DSN = v
	}
	if v := os.Getenv("DATA_ROOT"); v != "" {
		cfg.Data.Root = v
	}
	if v, err := strconv.Atoi(os.Getenv("PAGE_SIZE")); err == nil && v > 0 {
		cfg.Session.PageSize = v
	}
	if cfg.Session.PageSize <= 0 {
		cfg.Session.PageSize = 100
	}
	if cfg.Matcher.MaxCandidates <= 0 {
		cfg.Matcher.MaxCandidates = 10
	}
	if cfg.Session.Capacity <= 0 {
		cfg.Session.Capacity = 1024
	}
}

// FetchTimeout thời gian chờ tối đa cho một resource
func (c LookupCfg) FetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Data.FetchTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func RequestTimeout() time.Duration { return 30 * time.Second }
