// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// config is the contents of a -config file. Keys match the flag names
// with "-" replaced by "_", except quiet, which sets -q.
type config struct {
	Dir           string            `toml:"dir"`
	Policy        string            `toml:"policy"`
	IOPSThreshold string            `toml:"iops_threshold"`
	Device        string            `toml:"device"`
	PNG           string            `toml:"png"`
	SVG           string            `toml:"svg"`
	PDF           string            `toml:"pdf"`
	CSV           string            `toml:"csv"`
	Series        string            `toml:"series"`
	Bench         string            `toml:"bench"`
	HTML          string            `toml:"html"`
	Driver        string            `toml:"driver"`
	DSN           string            `toml:"dsn"`
	Label         string            `toml:"label"`
	Quiet         bool              `toml:"quiet"`
	Modes         map[string]string `toml:"modes"`

	md toml.MetaData
}

func loadConfig(path string) (*config, error) {
	cfg := new(config)
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.md = md
	return cfg, nil
}

// apply copies the settings of c into o, except those whose flag is
// in set.
func (c *config) apply(o *options, set map[string]bool) {
	str := func(flag string, dst *string, v string) {
		key := strings.ReplaceAll(flag, "-", "_")
		if !set[flag] && c.md.IsDefined(key) {
			*dst = v
		}
	}
	str("dir", &o.dir, c.Dir)
	str("policy", &o.policy, c.Policy)
	str("iops-threshold", &o.iopsThreshold, c.IOPSThreshold)
	str("device", &o.device, c.Device)
	str("png", &o.png, c.PNG)
	str("svg", &o.svg, c.SVG)
	str("pdf", &o.pdf, c.PDF)
	str("csv", &o.csv, c.CSV)
	str("series", &o.series, c.Series)
	str("bench", &o.bench, c.Bench)
	str("html", &o.html, c.HTML)
	str("driver", &o.driver, c.Driver)
	str("dsn", &o.dsn, c.DSN)
	str("label", &o.label, c.Label)
	if !set["q"] && c.md.IsDefined("quiet") {
		o.quiet = c.Quiet
	}
	if len(c.Modes) > 0 {
		o.modes = c.Modes
	}
}
