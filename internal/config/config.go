package config

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Source      SourceConfig      `yaml:"source"`
	Destination DestinationConfig `yaml:"destination"`
	Policy      PolicyConfig      `yaml:"policy"`
	Encryption  EncryptionConfig  `yaml:"encryption"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Offsite     OffsiteConfig     `yaml:"offsite"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type SourceConfig struct {
	Path   string      `yaml:"path"`
	Suffix string      `yaml:"suffix"` // e.g. ".sql"
	Watch  WatchConfig `yaml:"watch"`
}

type WatchConfig struct {
	Mode           string        `yaml:"mode"`           // "off", "auto", "poll", "fsnotify"
	PollInterval   time.Duration `yaml:"pollInterval"`   // e.g. 1m
	DebounceWindow time.Duration `yaml:"debounceWindow"` // e.g. 30s
}

type DestinationConfig struct {
	Target    string `yaml:"target"`    // encrypted archives and audit logs
	Completed string `yaml:"completed"` // relocated sources, one subdir per batch
}

type PolicyConfig struct {
	MaxSize   Size          `yaml:"maxSize"`
	MinSize   Size          `yaml:"minSize"`
	AgeCutoff time.Duration `yaml:"ageCutoff"`

	// RelocateOnArchiveFailure moves the selected sources even when the
	// archive could not be built or encrypted. Nil means true.
	RelocateOnArchiveFailure *bool `yaml:"relocateOnArchiveFailure"`
}

// RelocateAlways reports whether sources move regardless of the pipeline outcome.
func (p PolicyConfig) RelocateAlways() bool {
	return p.RelocateOnArchiveFailure == nil || *p.RelocateOnArchiveFailure
}

type EncryptionConfig struct {
	Passphrase string `yaml:"passphrase"`
	BufferSize Size   `yaml:"bufferSize"`
}

type ScheduleConfig struct {
	Cron       string `yaml:"cron"` // standard 5-field spec or @every/@hourly descriptors
	RunOnStart bool   `yaml:"runOnStart"`
}

type OffsiteConfig struct {
	URL string `yaml:"url"` // s3://host/bucket/prefix, filesystem:///path, inmemory://
}

type MetricsConfig struct {
	Listen   string `yaml:"listen"`   // daemon mode, e.g. ":9102"
	Textfile string `yaml:"textfile"` // one-shot mode, node_exporter textfile
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info", "debug", etc.
	Format string `yaml:"format"` // "json", "text"
}

// Size is a byte count written in config as "16.5GiB", "64KiB" or a bare integer.
type Size int64

func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}
	n, err := humanize.ParseBytes(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: parsing size %q: %w", node.Line, node.Value, err)
	}
	*s = Size(n)
	return nil
}

func (s Size) MarshalYAML() (any, error) {
	return humanize.IBytes(uint64(s)), nil
}

func (s Size) String() string {
	return humanize.IBytes(uint64(s))
}

const (
	GiB = 1 << 30
	KiB = 1 << 10

	DefaultMaxSize    Size = 30 * GiB
	DefaultMinSize    Size = 33 * GiB / 2 // 16.5 GiB
	DefaultAgeCutoff       = time.Hour
	DefaultBufferSize Size = 64 * KiB
	DefaultSuffix          = ".sql"
	DefaultCron            = "@every 15m"
)
