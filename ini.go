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
	"gopkg.in/ini.v1"
)

// iniEvent is one callback event from the external INI collaborator: a
// [section] transition (Key == "" && Value == ""), or a key = value line
// within the current section ("" for the implicit default section).
type iniEvent struct {
	Section string
	Key     string
	Value   string
}

// iniCallback is invoked for section transitions and key/value lines, in
// file order. Returning an error aborts the walk (mirrors the original
// ini_parse callback's "return nonzero to abort").
type iniCallback func(iniEvent) error

// walkINI loads filename with the ini.v1 library and replays it as the
// section/key/value event stream the config loader expects. This keeps
// the core's only contact with the actual INI grammar inside this one
// function -- swapping INI backends never touches config.go.
func walkINI(filename string, cb iniCallback) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		AllowBooleanKeys:        true,
		SkipUnrecognizableLines: false,
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, filename)
	if err != nil {
		return err
	}

	// ini.v1 always exposes an implicit ini.DefaultSection ("DEFAULT");
	// its keys are the section-less default-target options and never
	// trigger a section-transition event.
	def := f.Section(ini.DefaultSection)
	for _, key := range def.Keys() {
		if err := cb(iniEvent{Section: "", Key: key.Name(), Value: key.Value()}); err != nil {
			return err
		}
	}

	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		if err := cb(iniEvent{Section: section.Name()}); err != nil {
			return err
		}
		for _, key := range section.Keys() {
			if err := cb(iniEvent{Section: section.Name(), Key: key.Name(), Value: key.Value()}); err != nil {
				return err
			}
		}
	}
	return nil
}
