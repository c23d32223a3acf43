package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"gnss-base/internal/pose"
	"gnss-base/internal/utm"
)

type Config struct {
	UTM     UTMConfig     `yaml:"utm"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type UTMConfig struct {
	Zone int `yaml:"zone"`
	// North defaults to true when omitted.
	North  *bool     `yaml:"north"`
	Origin pose.Vec3 `yaml:"origin"`
}

// Params converts the section into converter parameters.
func (c UTMConfig) Params() utm.Params {
	north := true
	if c.North != nil {
		north = *c.North
	}
	return utm.Params{Origin: c.Origin, Zone: c.Zone, North: north}
}

type InputConfig struct {
	// Path of the NDJSON solution log; "-" reads stdin.
	Path string `yaml:"path"`
	// Pace replays solutions with the spacing of their timestamps.
	Pace  bool    `yaml:"pace"`
	Speed float64 `yaml:"speed"`
}

type OutputConfig struct {
	// Path receives NDJSON pose samples; "-" is stdout, "" disables.
	Path   string       `yaml:"path"`
	UDP    UDPConfig    `yaml:"udp"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	Record RecordConfig `yaml:"record"`
}

type UDPConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

type MQTTConfig struct {
	Enable   bool   `yaml:"enable"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type MetricsConfig struct {
	// Textfile, when set, receives the run's counters in Prometheus text
	// format at exit.
	Textfile string `yaml:"textfile"`
}

var linePrefix = regexp.MustCompile(`^line \d+: `)

// Parse decodes and validates a YAML document.
func Parse(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		var te *yaml.TypeError
		if errors.As(err, &te) {
			msgs := make([]string, 0, len(te.Errors))
			for _, m := range te.Errors {
				msgs = append(msgs, linePrefix.ReplaceAllString(m, ""))
			}
			return Config{}, fmt.Errorf("config contains unknown fields: %s", strings.Join(msgs, "; "))
		}
		return Config{}, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

func (cfg *Config) applyDefaults() error {
	if cfg.UTM.Zone == 0 {
		cfg.UTM.Zone = utm.DefaultZone
	}
	if cfg.UTM.Zone < utm.MinZone || cfg.UTM.Zone > utm.MaxZone {
		return fmt.Errorf("utm.zone must be between %d and %d", utm.MinZone, utm.MaxZone)
	}

	cfg.Input.Path = strings.TrimSpace(cfg.Input.Path)
	if cfg.Input.Path == "" {
		cfg.Input.Path = "-"
	}
	if cfg.Input.Speed == 0 {
		cfg.Input.Speed = 1
	}
	if !(cfg.Input.Speed > 0) {
		return fmt.Errorf("input.speed must be > 0")
	}

	cfg.Output.Path = strings.TrimSpace(cfg.Output.Path)

	if cfg.Output.UDP.Enable && strings.TrimSpace(cfg.Output.UDP.Dest) == "" {
		return fmt.Errorf("output.udp.dest is required when output.udp.enable is true")
	}

	if cfg.Output.MQTT.Enable {
		if strings.TrimSpace(cfg.Output.MQTT.Broker) == "" {
			cfg.Output.MQTT.Broker = "tcp://localhost:1883"
		}
		if strings.TrimSpace(cfg.Output.MQTT.ClientID) == "" {
			cfg.Output.MQTT.ClientID = "gnss-utm"
		}
		if strings.TrimSpace(cfg.Output.MQTT.Topic) == "" {
			cfg.Output.MQTT.Topic = "gnss/pose"
		}
		if cfg.Output.MQTT.QoS > 2 {
			return fmt.Errorf("output.mqtt.qos must be 0, 1 or 2")
		}
	}

	if cfg.Output.Record.Enable && strings.TrimSpace(cfg.Output.Record.Path) == "" {
		return fmt.Errorf("output.record.path is required when output.record.enable is true")
	}

	// Fall back to stdout so a run never silently discards its output.
	if cfg.Output.Path == "" && !cfg.Output.UDP.Enable && !cfg.Output.MQTT.Enable && !cfg.Output.Record.Enable {
		cfg.Output.Path = "-"
	}
	return nil
}
