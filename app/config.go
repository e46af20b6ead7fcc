package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Prefix is the env var prefix
var Prefix = "harvest"

func init() {
	os.Setenv("APP", Prefix)
}

var envVar = regexp.MustCompile(`\$([A-Z_]+)`)

func expandEnv(in string) string {
	for _, match := range envVar.FindAllStringSubmatch(in, -1) {
		value := os.Getenv(match[1])
		if value == "" {
			continue
		}
		in = strings.ReplaceAll(in, match[0], value)
	}
	return in
}

// Config holds settings of a single component, like `client` or `source`.
type Config map[string]string

type configurable interface {
	Configure(Config) error
}

type configuration map[string]Config

func (c Config) StrOr(key, def string) string {
	v, ok := c[key]
	if !ok {
		v = def
	}
	return expandEnv(v)
}

func (c Config) DurOr(key string, def time.Duration) time.Duration {
	v, ok := c[key]
	if !ok {
		return def
	}
	d, err := ParseDuration(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cannot parse duration")
		return def
	}
	return d
}

func (c Config) IntOr(key string, def int) int {
	v, ok := c[key]
	if !ok {
		return def
	}
	p, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cannot parse int")
		return def
	}
	return p
}

// IntsOr parses comma-separated list of integers, like `429,500,503`
func (c Config) IntsOr(key string, def []int) []int {
	v, ok := c[key]
	if !ok {
		return def
	}
	out := []int{}
	for _, raw := range strings.Split(v, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cannot parse int list")
			return def
		}
		out = append(out, p)
	}
	return out
}

func (c Config) BoolOr(key string, def bool) bool {
	v, ok := c[key]
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "yes", "true":
		return true
	default:
		return false
	}
}

// scalar renders yaml value as string, so that lists like `[429, 503]`
// become `429,503`, the same as in environment variables
func scalar(v any) string {
	list, ok := v.([]any)
	if !ok {
		return fmt.Sprint(v)
	}
	items := []string{}
	for _, item := range list {
		items = append(items, scalar(item))
	}
	return strings.Join(items, ",")
}

func getConfig() (configuration, error) {
	var raw []byte
	locs := []string{
		path.Clean(expandEnv("$PWD/$APP.yml")),
		path.Clean(expandEnv("$PWD/config.yml")),
		path.Clean(expandEnv("$HOME/.$APP/config.yml")),
	}
	for _, loc := range locs {
		content, err := os.ReadFile(loc)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		raw = content
		break
	}
	// scalars in yaml may be numbers or bools, while components read strings
	loose := map[string]map[string]any{}
	err := yaml.Unmarshal(raw, &loose)
	if err != nil {
		return nil, err
	}
	data := configuration{}
	for component, values := range loose {
		c := Config{}
		for k, v := range values {
			c[k] = scalar(v)
		}
		data[component] = c
	}
	// .env never overrides variables already present in the environment
	err = godotenv.Load(path.Clean(expandEnv("$PWD/.env")))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, raw := range os.Environ() {
		rawSplit := strings.SplitN(raw, "=", 2)
		v := strings.ToLower(rawSplit[0])
		s := strings.SplitN(v, "_", 3)
		if len(s) != 3 {
			continue
		}
		if s[0] != Prefix {
			continue
		}
		component, key := s[1], s[2]
		c, ok := data[component]
		if ok {
			c[key] = rawSplit[1]
		} else {
			data[component] = Config{key: rawSplit[1]}
		}
	}
	return data, nil
}
