// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package pipelinecfg loads the declarative description of one
// dispatcher run -- which driver produces rows, which schema and
// destination it lands in, and which queries to run -- from a YAML
// or TOML file. The transfer core itself never reads a config file;
// this package exists only to turn one into the concrete builder,
// schema and query list a cmd/xfer invocation hands to dispatcher.New.
package pipelinecfg

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
	"sigs.k8s.io/yaml"

	"github.com/nzrymiak/xfer/typesys"
)

// Config is the whole of one pipeline run: which driver to build
// sources from, the schema every query's rows are shaped into, the
// destination to land them in, and the query strings to dispatch.
type Config struct {
	Driver      string            `json:"driver" toml:"driver"`
	Destination string            `json:"destination" toml:"destination"`
	Schema      []string          `json:"schema" toml:"schema"`
	Queries     []string          `json:"queries" toml:"queries"`
	BufferMB    int               `json:"buffer_mb,omitempty" toml:"buffer_mb,omitempty"`
	Options     map[string]string `json:"options,omitempty" toml:"options,omitempty"`
}

// KnownDrivers and KnownDestinations are the closed sets cmd/xfer
// recognizes; they intentionally mirror the concrete packages this
// module ships (sourcedrivers, memwriter, arrowwriter,
// dataframewriter) rather than any open plugin registry.
var (
	KnownDrivers      = []string{"u64", "string", "bool", "f64", "timestamp", "csv", "tsv"}
	KnownDestinations = []string{"memory", "arrow", "dataframe"}
)

// LoadYAML reads a Config from a YAML file.
func LoadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipelinecfg: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("pipelinecfg: parse yaml %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadTOML reads a Config from a TOML file.
func LoadTOML(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("pipelinecfg: parse toml %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the driver/destination names are known and the
// schema decodes into valid typesys tags; it does not touch the
// filesystem or build any Source.
func (c *Config) Validate() error {
	if !slices.Contains(KnownDrivers, c.Driver) {
		return fmt.Errorf("pipelinecfg: unknown driver %q (known: %v)", c.Driver, KnownDrivers)
	}
	if !slices.Contains(KnownDestinations, c.Destination) {
		return fmt.Errorf("pipelinecfg: unknown destination %q (known: %v)", c.Destination, KnownDestinations)
	}
	if len(c.Schema) == 0 {
		return fmt.Errorf("pipelinecfg: schema must name at least one column")
	}
	if len(c.Queries) == 0 {
		return fmt.Errorf("pipelinecfg: queries must list at least one query")
	}
	if _, err := c.TypesysSchema(); err != nil {
		return err
	}
	return nil
}

var tagByName = map[string]typesys.DataType{
	"u64":       typesys.U64,
	"optu64":    typesys.OptU64,
	"f64":       typesys.F64,
	"optf64":    typesys.OptF64,
	"bool":      typesys.Bool,
	"optbool":   typesys.OptBool,
	"string":    typesys.String,
	"timestamp": typesys.Timestamp,
}

// TypesysSchema decodes the config's string schema into a
// typesys.Schema, case-insensitively.
func (c *Config) TypesysSchema() (typesys.Schema, error) {
	schema := make(typesys.Schema, len(c.Schema))
	for i, name := range c.Schema {
		tag, ok := tagByName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("pipelinecfg: unknown schema tag %q at column %d", name, i)
		}
		schema[i] = tag
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("pipelinecfg: %w", err)
	}
	return schema, nil
}

// Fingerprint returns a short content hash of the config's queries
// and schema, stable across re-loads of the same file. cmd/xfer uses
// it as an idempotency/cache key for a run, the same role
// blake2b-hashed cache values play for a Sneller-style cached
// environment.
func (c *Config) Fingerprint() (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(h, "driver=%s\ndestination=%s\n", c.Driver, c.Destination)
	for _, s := range c.Schema {
		fmt.Fprintf(h, "schema=%s\n", s)
	}
	queries := append([]string(nil), c.Queries...)
	sort.Strings(queries)
	for _, q := range queries {
		fmt.Fprintf(h, "query=%s\n", q)
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:32], nil
}

// shardKey0/shardKey1 are fixed siphash keys, same role as the pair
// of constants a consistent-hashing splitter uses to pick a peer: the
// values themselves don't matter, only that every process computing
// ShardOf for the same name agrees on them.
const (
	shardKey0 = uint64(0x5d1ec810)
	shardKey1 = uint64(0xfebed702)
)

// ShardOf deterministically maps a pipeline name to one of nshards
// worker replicas, so a fleet of cmd/xfer processes can each own a
// disjoint subset of named pipelines without a coordinator.
func ShardOf(name string, nshards int) (int, error) {
	if nshards <= 0 {
		return 0, fmt.Errorf("pipelinecfg: nshards must be positive, got %d", nshards)
	}
	hash := siphash.Hash(shardKey0, shardKey1, []byte(name))
	maxUint64 := ^uint64(0)
	idx := hash / (maxUint64 / uint64(nshards))
	if int(idx) >= nshards {
		idx = uint64(nshards - 1)
	}
	return int(idx), nil
}
