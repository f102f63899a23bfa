package connection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/syssam/databoy"
	"github.com/syssam/databoy/dialect"
	"github.com/syssam/databoy/redisstore"
)

// Config is the YAML configuration of connections and return-value scope.
type Config struct {
	Default      string             `yaml:"default"`
	Connections  []Connection       `yaml:"connections"`
	ReturnValues ReturnValuesConfig `yaml:"return_values"`
}

// Connection configures one named connection.
type Connection struct {
	Name   string         `yaml:"name"`
	Vendor dialect.Vendor `yaml:"vendor"`
	// Driver overrides the database/sql driver name.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// DSNFile holds the DSN on its first line.
	DSNFile string `yaml:"dsn_file"`
	// Alternative is used when neither DSN nor DSNFile yields a value.
	Alternative string `yaml:"alternative"`
}

// ReturnValuesConfig selects where keyed return values live.
type ReturnValuesConfig struct {
	Store string      `yaml:"store"` // "memory" (default) or "redis"
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig configures the redis value store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Parse decodes a YAML configuration.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("connection: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("connection: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks names, vendors and the store selection.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Connections))
	for i, conn := range c.Connections {
		if conn.Name == "" {
			return fmt.Errorf("connection: connections[%d]: name is required", i)
		}
		if seen[conn.Name] {
			return fmt.Errorf("connection: duplicate connection %q", conn.Name)
		}
		seen[conn.Name] = true
		if conn.Vendor == "" {
			return fmt.Errorf("connection: %q: vendor is required", conn.Name)
		}
	}
	if c.Default != "" && !seen[c.Default] {
		return fmt.Errorf("connection: default connection %q is not configured", c.Default)
	}
	switch c.ReturnValues.Store {
	case "", "memory":
	case "redis":
		if c.ReturnValues.Redis.Addr == "" {
			return errors.New("connection: return_values.redis.addr is required")
		}
	default:
		return fmt.Errorf("connection: unknown return value store %q", c.ReturnValues.Store)
	}
	return nil
}

// ResolveDSN returns DSN, else the first line of DSNFile, else
// Alternative.
func (c Connection) ResolveDSN() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	if c.DSNFile != "" {
		dsn, err := readFirstLine(c.DSNFile)
		if err == nil && dsn != "" {
			return dsn, nil
		}
		if c.Alternative == "" {
			if err == nil {
				err = errors.New("file is empty")
			}
			return "", fmt.Errorf("connection: %q: read dsn file: %w", c.Name, err)
		}
	}
	if c.Alternative != "" {
		return c.Alternative, nil
	}
	return "", fmt.Errorf("connection: %q: no dsn configured", c.Name)
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", sc.Err()
}

// NewRegistry builds the return-value registry described by the
// configuration. The redis client, when one is created, is closed by the
// returned function.
func (c *Config) NewRegistry() (*databoy.Registry, func() error) {
	if c.ReturnValues.Store != "redis" {
		return databoy.NewRegistry(), func() error { return nil }
	}
	rc := c.ReturnValues.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	var opts []redisstore.Option
	if rc.Prefix != "" {
		opts = append(opts, redisstore.WithPrefix(rc.Prefix))
	}
	if rc.TTL > 0 {
		opts = append(opts, redisstore.WithTTL(rc.TTL))
	}
	store := redisstore.New(client, opts...)
	return databoy.NewRegistry(databoy.WithValueStore(store)), client.Close
}
