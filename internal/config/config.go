package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names the environment variable holding the YAML config path
// when none is given on the command line.
const ConfigFileEnv = "CONFIG_FILE"

// Config is the full description of one generation run.
type Config struct {
	Samples             int     `yaml:"samples" env:"GEN_SAMPLES"`
	Workers             int     `yaml:"workers" env:"GEN_WORKERS"`
	MinTX               int     `yaml:"min_tx" env:"GEN_MIN_TX"`
	MaxTX               int     `yaml:"max_tx" env:"GEN_MAX_TX"`
	TXHeight            float64 `yaml:"tx_height" env:"GEN_TX_HEIGHT"`
	CellSize            float64 `yaml:"cell_size" env:"GEN_CELL_SIZE"`
	NoiseFloor          float64 `yaml:"noise_floor" env:"GEN_NOISE_FLOOR"`
	EmitSensorLocations bool    `yaml:"emit_sensor_locations" env:"GEN_EMIT_SENSOR_LOCATIONS"`
	ChangingSensors     bool    `yaml:"changing_sensors" env:"GEN_CHANGING_SENSORS"`
	Selector            string  `yaml:"selector" env:"GEN_SELECTOR"` // strongest | most_isolated
	Seed                int64   `yaml:"seed" env:"GEN_SEED"`
	Progress            bool    `yaml:"progress" env:"GEN_PROGRESS"`
	MetricsAddr         string  `yaml:"metrics_addr" env:"GEN_METRICS_ADDR"`

	Field   FieldConfig  `yaml:"field" env:"GEN_FIELD"`
	Sensors SensorConfig `yaml:"sensors" env:"GEN_SENSORS"`
	Model   ModelConfig  `yaml:"model" env:"GEN_MODEL"`
	Power   PowerConfig  `yaml:"power" env:"GEN_POWER"`
	Output  OutputConfig `yaml:"output" env:"GEN_OUTPUT"`
}

// FieldConfig describes the placement field.
type FieldConfig struct {
	Shape  string `yaml:"shape"` // square | rectangle
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// SensorConfig locates the sensor layout. With an empty Dir a random layout
// of Count sensors is drawn from the field once per run.
type SensorConfig struct {
	Dir    string  `yaml:"dir"`
	Count  int     `yaml:"count"`
	Height float64 `yaml:"height"`
	Cost   float64 `yaml:"cost"`
	Std    float64 `yaml:"std"`
}

// ModelConfig selects and parameterises the propagation model.
type ModelConfig struct {
	Kind         string  `yaml:"kind"` // log_distance | free_space | terrain
	Alpha        float64 `yaml:"alpha"`
	NoiseStd     float64 `yaml:"noise_std"`
	FrequencyGHz float64 `yaml:"frequency_ghz"`

	TerrainBinary  string        `yaml:"terrain_binary"`
	TerrainArgs    []string      `yaml:"terrain_args" env:"-"`
	TerrainDir     string        `yaml:"terrain_dir"`
	TerrainTimeout time.Duration `yaml:"terrain_timeout"`

	// CachePath seeds the terrain cache; CacheOutputPath receives the merged
	// cache after the run and defaults to CachePath + ".new".
	CachePath       string `yaml:"cache_path"`
	CacheOutputPath string `yaml:"cache_output_path"`
}

// PowerConfig selects the transmit power policy.
type PowerConfig struct {
	Policy  string    `yaml:"policy"` // palette | indexed | uniform
	Palette []float64 `yaml:"palette" env:"-"`
	Min     float64   `yaml:"min"`
	Max     float64   `yaml:"max"`
}

// OutputConfig locates shards and the merged dataset.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	DatasetDir  string `yaml:"dataset_dir"`
	ShardPrefix string `yaml:"shard_prefix"`
}

// Default returns the configuration used when neither a file nor the
// environment overrides a value.
func Default() Config {
	return Config{
		Samples:    1000,
		Workers:    4,
		MinTX:      1,
		MaxTX:      4,
		TXHeight:   30,
		CellSize:   1,
		NoiseFloor: -90,
		Selector:   "strongest",
		Progress:   true,
		Field:      FieldConfig{Shape: "square", Width: 100, Height: 100},
		Sensors:    SensorConfig{Count: 100, Height: 15, Cost: 1, Std: 1},
		Model:      ModelConfig{Kind: "log_distance", Alpha: 3, FrequencyGHz: 2.4},
		Power:      PowerConfig{Policy: "palette", Palette: []float64{-15, -10, -5, 0}, Min: -15, Max: 0},
		Output:     OutputConfig{Dir: "data", ShardPrefix: "localization"},
	}
}

// Load starts from Default, applies the YAML file at path (or the file named
// by CONFIG_FILE when path is empty), overrides from the environment and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(reflect.ValueOf(&cfg).Elem(), ""); err != nil {
		return Config{}, err
	}
	if cfg.Model.CacheOutputPath == "" && cfg.Model.CachePath != "" {
		cfg.Model.CacheOutputPath = cfg.Model.CachePath + ".new"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first inconsistency in cfg.
func (c Config) Validate() error {
	switch {
	case c.Samples <= 0:
		return fmt.Errorf("config: samples must be positive, got %d", c.Samples)
	case c.Workers <= 0:
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	case c.MinTX < 0 || c.MaxTX < c.MinTX:
		return fmt.Errorf("config: invalid transmitter range [%d, %d]", c.MinTX, c.MaxTX)
	case c.CellSize <= 0:
		return fmt.Errorf("config: cell_size must be positive, got %v", c.CellSize)
	}

	switch c.Selector {
	case "strongest", "most_isolated":
	default:
		return fmt.Errorf("config: unknown selector %q", c.Selector)
	}

	switch c.Field.Shape {
	case "square":
		if c.Field.Width <= 0 {
			return fmt.Errorf("config: square width must be positive, got %d", c.Field.Width)
		}
	case "rectangle":
		if c.Field.Width <= 0 || c.Field.Height <= 0 {
			return fmt.Errorf("config: invalid rectangle %dx%d", c.Field.Width, c.Field.Height)
		}
	default:
		return fmt.Errorf("config: unknown field shape %q", c.Field.Shape)
	}

	if c.Sensors.Count < 0 {
		return fmt.Errorf("config: sensor count must not be negative, got %d", c.Sensors.Count)
	}

	switch c.Model.Kind {
	case "log_distance":
		if c.Model.NoiseStd < 0 {
			return fmt.Errorf("config: noise_std must not be negative, got %v", c.Model.NoiseStd)
		}
	case "free_space":
	case "terrain":
		if c.Model.TerrainBinary == "" && c.Model.CachePath == "" {
			return errors.New("config: terrain model needs terrain_binary or cache_path")
		}
	default:
		return fmt.Errorf("config: unknown model kind %q", c.Model.Kind)
	}

	switch c.Power.Policy {
	case "palette", "indexed":
		if len(c.Power.Palette) == 0 {
			return fmt.Errorf("config: %s power policy needs a palette", c.Power.Policy)
		}
	case "uniform":
		if c.Power.Max < c.Power.Min {
			return fmt.Errorf("config: uniform power max %v below min %v", c.Power.Max, c.Power.Min)
		}
	default:
		return fmt.Errorf("config: unknown power policy %q", c.Power.Policy)
	}

	if c.Output.Dir == "" {
		return errors.New("config: output dir is required")
	}
	return nil
}

func loadFromFile(path string, target *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}

	return nil
}

// applyEnv overrides cfg from GEN_* environment variables. Top-level fields
// name their variable in an `env` tag (GEN_SAMPLES, GEN_SELECTOR, ...).
// Fields of a nested section take the section's tag plus the upper-cased
// field name, so Model.Alpha is GEN_MODEL_ALPHA and Model.TerrainTimeout is
// GEN_MODEL_TERRAINTIMEOUT. Slices are file-only and tagged `env:"-"`.
func applyEnv(section reflect.Value, prefix string) error {
	st := section.Type()
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		fv := section.Field(i)
		if !fv.CanSet() {
			continue
		}

		tag := sf.Tag.Get("env")
		if tag == "-" {
			continue
		}
		key := tag
		if key == "" {
			key = envKey(prefix, sf.Name)
		}

		if fv.Kind() == reflect.Struct && fv.Type() != durationType {
			if err := applyEnv(fv, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := setFromString(fv, raw); err != nil {
			return fmt.Errorf("config: parse %s=%q: %w", key, raw, err)
		}
	}
	return nil
}

// envKey joins a section prefix and a Go field name: ("GEN_FIELD", "Width")
// gives GEN_FIELD_WIDTH.
func envKey(prefix, name string) string {
	name = strings.ToUpper(name)
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

var durationType = reflect.TypeOf(time.Duration(0))

// setFromString parses raw into one of the scalar kinds Config uses.
// Durations use time.ParseDuration syntax ("250ms", "5s").
func setFromString(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
		return nil
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
		return nil
	}
	return fmt.Errorf("unsupported field type %s", field.Type())
}
