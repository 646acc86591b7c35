package dem

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the particle setup loaded by Engine.LoadConfiguration.
type Config struct {
	Domain    DomainConfig     `yaml:"domain"`
	Density   float64          `yaml:"density"` // particle material density, kg/m³
	Gravity   [3]float64       `yaml:"gravity"` // m/s²
	Particles []ParticleConfig `yaml:"particles"`
}

// DomainConfig is the simulation box in metres. Particles leaving a periodic
// axis re-enter on the opposite side; other faces reflect them.
type DomainConfig struct {
	Min      [3]float64 `yaml:"min"`
	Max      [3]float64 `yaml:"max"`
	Periodic [3]bool    `yaml:"periodic"`
}

// ParticleConfig is the initial state of one sphere.
type ParticleConfig struct {
	ID              int64      `yaml:"id"`
	Position        [3]float64 `yaml:"position"`
	Velocity        [3]float64 `yaml:"velocity"`
	AngularVelocity [3]float64 `yaml:"angular_velocity"`
	Radius          float64    `yaml:"radius"`
}

// LoadConfig reads and strictly parses a YAML particle setup file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading particle config: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing particle config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the domain and every particle.
func (c *Config) Validate() error {
	for a := 0; a < 3; a++ {
		if !(c.Domain.Max[a] > c.Domain.Min[a]) {
			return fmt.Errorf("domain: max[%d]=%g must exceed min[%d]=%g", a, c.Domain.Max[a], a, c.Domain.Min[a])
		}
	}
	if len(c.Particles) > 0 && !(c.Density > 0) {
		return fmt.Errorf("density must be positive, got %g", c.Density)
	}
	seen := make(map[int64]bool, len(c.Particles))
	for i, p := range c.Particles {
		if p.ID < 0 {
			return fmt.Errorf("particles[%d]: id must be non-negative, got %d", i, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("particles[%d]: duplicate id %d", i, p.ID)
		}
		seen[p.ID] = true
		if !(p.Radius > 0) || math.IsInf(p.Radius, 0) {
			return fmt.Errorf("particles[%d]: radius must be positive, got %g", i, p.Radius)
		}
		for a := 0; a < 3; a++ {
			if p.Position[a] < c.Domain.Min[a] || p.Position[a] > c.Domain.Max[a] {
				return fmt.Errorf("particles[%d]: position %v outside domain", i, p.Position)
			}
		}
	}
	return nil
}
