package explorer

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the pipeline settings: where band tiles come from,
// how large they are, and how the derived index is bucketed. Defaults
// cover everything; a YAML file overrides selectively.
type Config struct {
	Service struct {
		// Endpoint is the imagery-service URL band tile requests are
		// posted to.
		Endpoint string `yaml:"endpoint"`

		// Token is the bearer token attached to each request.
		Token string `yaml:"token"`

		// TimeoutSeconds bounds a single band fetch.
		TimeoutSeconds int `yaml:"timeoutSeconds"`
	} `yaml:"service"`

	Imagery struct {
		// TileSize is the width and height, in pixels, requested per
		// band tile.
		TileSize int `yaml:"tileSize"`

		// Bands lists the band identifiers fetched for the vegetation
		// index; NIR first, then red.
		Bands []string `yaml:"bands"`
	} `yaml:"imagery"`

	// Classification optionally overrides the NDVI bucket table. Order
	// is most to least vegetated; the last entry is the catch-all.
	Classification []ClassConfig `yaml:"classification"`
}

// ClassConfig is one classification bucket as it appears in YAML.
type ClassConfig struct {
	Name      string   `yaml:"name"`
	Threshold float64  `yaml:"threshold"`
	Color     [4]uint8 `yaml:"color"` // r, g, b, a
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Service.Endpoint = "https://services.sentinel-hub.com/api/v1/process"
	cfg.Service.TimeoutSeconds = 30
	cfg.Imagery.TileSize = 256
	cfg.Imagery.Bands = []string{"B08", "B04"}
	return cfg
}

// LoadConfig loads configuration from a YAML file, merging it over the
// defaults. A missing file is not an error: the defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Imagery.TileSize <= 0 {
		return nil, fmt.Errorf("config: tileSize must be positive, got %d", cfg.Imagery.TileSize)
	}
	return cfg, nil
}

// Classes returns the classification bucket table: the configured
// overrides when present, otherwise DefaultClasses. The final bucket's
// threshold is forced to negative infinity so classification stays
// total no matter what the file says.
func (c *Config) Classes() []VegetationClass {
	if len(c.Classification) == 0 {
		return DefaultClasses()
	}

	classes := make([]VegetationClass, len(c.Classification))
	for i, cc := range c.Classification {
		classes[i] = VegetationClass{
			Name:      cc.Name,
			Threshold: cc.Threshold,
			Color:     color.RGBA{R: cc.Color[0], G: cc.Color[1], B: cc.Color[2], A: cc.Color[3]},
		}
	}
	classes[len(classes)-1].Threshold = math.Inf(-1)
	return classes
}
