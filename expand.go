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
	"strings"
)

const (
	expandPasses  = 3
	expandMaxLoop = 10
)

// ExpandVariables runs up to expandPasses passes over every
// optVarExpandable field, resolving $(NAME) tokens against the option
// registry (plus the special-cased TARGET), to allow short chains of
// variables that reference each other.
func ExpandVariables(opts *BuildOptions) error {
	for pass := 0; pass < expandPasses; pass++ {
		for _, def := range optionDefs {
			if def.flags&optVarExpandable == 0 {
				continue
			}
			field := def.get(opts)
			for i := 0; ; i++ {
				start, end, name, ok := findVariable(*field)
				if !ok {
					break
				}
				if i >= expandMaxLoop {
					return fmt.Errorf("config error: failed to resolve variable %q", name)
				}
				value := variableValue(opts, name)
				*field = (*field)[:start] + value + (*field)[end:]
			}
		}
	}
	return nil
}

// findVariable locates the first literal "$(" ... ")" token in s and
// returns its byte span and the enclosed name.
func findVariable(s string) (start, end int, name string, ok bool) {
	i := strings.Index(s, "$(")
	if i < 0 {
		return 0, 0, "", false
	}
	j := strings.IndexByte(s[i+2:], ')')
	if j < 0 {
		return 0, 0, "", false
	}
	end = i + 2 + j + 1
	return i, end, s[i+2 : i+2+j], true
}

// variableValue resolves NAME case-insensitively: TARGET is special-cased
// (leading decimal digits and an optional "." ordering prefix stripped),
// everything else looks up the option registry. An unknown name resolves
// to the empty string -- it will surface as a blank in the final string
// once all passes are spent.
func variableValue(opts *BuildOptions, name string) string {
	if strings.EqualFold(name, "TARGET") {
		return strippedTargetName(opts.Target)
	}
	for _, def := range optionDefs {
		if strings.EqualFold(def.name, name) {
			return *def.get(opts)
		}
	}
	return ""
}

// strippedTargetName removes a leading decimal-digit ordering prefix and
// its optional "." separator, e.g. "10.backend" -> "backend".
func strippedTargetName(target string) string {
	i := 0
	for i < len(target) && target[i] >= '0' && target[i] <= '9' {
		i++
	}
	if i == 0 {
		return target
	}
	if i < len(target) && target[i] == '.' {
		i++
	}
	return target[i:]
}
