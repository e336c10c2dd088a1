// Copyright 2026 The ccbuild Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ccbuild

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/golang/glog"
)

// TargetMap is the ordered-by-discovery set of per-target options keyed by
// the raw section name from the config file (numeric ordering prefixes
// such as "10.backend" are kept here; they're only stripped for variable
// expansion and output naming).
type TargetMap struct {
	order  []string
	byName map[string]*BuildOptions
}

func newTargetMap() *TargetMap {
	return &TargetMap{byName: make(map[string]*BuildOptions)}
}

func (m *TargetMap) insert(o *BuildOptions) {
	if _, ok := m.byName[o.Target]; !ok {
		m.order = append(m.order, o.Target)
	}
	m.byName[o.Target] = o
}

// Targets returns targets in the order their [section] first appeared.
func (m *TargetMap) Targets() []*BuildOptions {
	out := make([]*BuildOptions, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.byName[name])
	}
	return out
}

// LoadConfig replays filename through the INI collaborator, builds the
// default options plus one BuildOptions per [section], and resolves
// compiler auto-detection once, before the first named target is created
// -- exactly the original's resolve_default_cc-before-init_opts ordering.
func LoadConfig(filename string) (*TargetMap, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	lastModified := info.ModTime().Unix()

	def := defaultBuildOptions()
	def.LastModified = lastModified
	targets := newTargetMap()
	ccResolved := false

	err = walkINI(filename, func(ev iniEvent) error {
		if ev.Key == "" && ev.Value == "" {
			if ev.Section == "" {
				return nil
			}
			if !ccResolved {
				if err := resolveDefaultCC(def); err != nil {
					return err
				}
				ccResolved = true
			}
			t := newTargetOptions(def, ev.Section)
			targets.insert(t)
			return nil
		}

		var opts *BuildOptions
		if ev.Section == "" {
			opts = def
		} else {
			opts = targets.byName[ev.Section]
			if opts == nil {
				return fmt.Errorf("config error: key %q outside any section", ev.Key)
			}
		}
		if strings.EqualFold(strings.TrimSuffix(ev.Key, "+"), "TARGET") {
			return nil
		}
		return applyOption(opts, ev.Key, ev.Value)
	})
	if err != nil {
		return nil, err
	}

	if !ccResolved {
		if err := resolveDefaultCC(def); err != nil {
			return nil, err
		}
	}
	for _, t := range targets.Targets() {
		if t.Type == 0 {
			return nil, fmt.Errorf("config error: target %q has no TYPE set", t.Target)
		}
	}
	return targets, nil
}

// resolveDefaultCC fires once: if the default CC is empty, probe the
// "gcc|clang|cl" fallback list; if it already contains a "|"-separated
// list, probe that instead. The first candidate whose "--version" exits
// zero is adopted.
func resolveDefaultCC(def *BuildOptions) error {
	if def.CC == "" {
		cc, err := findCompiler("gcc|clang|cl")
		if err != nil {
			return err
		}
		def.CC = cc
		return nil
	}
	if strings.Contains(def.CC, "|") {
		cc, err := findCompiler(def.CC)
		if err != nil {
			return err
		}
		def.CC = cc
	}
	return nil
}

// findCompiler tries each "|"-separated candidate in order, running
// "<candidate> --version" with output discarded, and returns the first
// one whose process exits zero.
func findCompiler(candidates string) (string, error) {
	for _, c := range strings.Split(candidates, "|") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		cmd := exec.Command(c, "--version")
		cmd.Stdout = nil
		cmd.Stderr = nil
		if err := cmd.Run(); err == nil {
			glog.V(1).Infof("compiler auto-detect: adopted %q", c)
			return c, nil
		}
		glog.V(1).Infof("compiler auto-detect: %q not available", c)
	}
	return "", fmt.Errorf("config error: no usable compiler found among %q", candidates)
}
