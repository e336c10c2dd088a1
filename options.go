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
	"strconv"
	"strings"
)

// targetType is a bitset over the artifact kinds a target can produce.
type targetType uint

const (
	typeBin targetType = 1 << iota
	typeShared
	typeStatic
)

// BuildOptions holds the fully-resolved, per-target configuration. One
// instance is created for the implicit "default" section and one more per
// named target; new targets are seeded from the default by deep copy.
type BuildOptions struct {
	Target       string
	Type         targetType
	SOVersion    int
	LastModified int64

	CC           string
	LibName      string
	BuildRoot    string
	InstallRoot  string
	InstallDir   string
	SrcPaths     string
	IncPaths     string
	LibPaths     string
	Libs         string
	CCFlags      string
	LDFlags      string
	Release      string
	Debug        string
	Compile      string
	Link         string
	LinkStatic   string
	LinkShared   string
}

// optFlags mirror the original option_def flag bits: whether a trailing
// "+" on the key means append-with-space, whether a new target copies the
// field from the default instance, and whether the expander visits it.
type optFlags uint

const (
	optAppendAllowed optFlags = 1 << iota
	optCopyFromDefault
	optVarExpandable
)

// optionDef is one entry of the option registry. Rather than the C
// original's raw struct-field offset, the field is named by a closure
// that returns a pointer to it -- the handler closes over the field
// instead of reaching for it through runtime reflection.
type optionDef struct {
	name  string
	flags optFlags
	get   func(*BuildOptions) *string
}

// optionDefs is the constant, ordered option table. Order matters for
// the variable expander, which resolves options in this order each pass.
var optionDefs = []optionDef{
	{"BUILD_ROOT", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.BuildRoot }},
	{"INSTALL_ROOT", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.InstallRoot }},
	{"CC", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.CC }},
	{"LIBNAME", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.LibName }},
	{"COMPILE", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.Compile }},
	{"LINK", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.Link }},
	{"LINK_SHARED", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.LinkShared }},
	{"LINK_STATIC", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.LinkStatic }},
	{"INSTALL_DIR", optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.InstallDir }},
	{"SRC_PATHS", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.SrcPaths }},
	{"INC_PATHS", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.IncPaths }},
	{"LIB_PATHS", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.LibPaths }},
	{"CCFLAGS", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.CCFlags }},
	{"LDFLAGS", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.LDFlags }},
	{"LIBS", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.Libs }},
	{"RELEASE", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.Release }},
	{"DEBUG", optAppendAllowed | optCopyFromDefault | optVarExpandable, func(o *BuildOptions) *string { return &o.Debug }},
}

// defaultBuildOptions returns the seed values for the implicit "default"
// target, grounded on the original's g_default_bopts.
func defaultBuildOptions() *BuildOptions {
	return &BuildOptions{
		Type:        typeBin,
		LibName:     "$(TARGET)",
		BuildRoot:   "./build/$(TARGET)/",
		InstallRoot: "./install/$(TARGET)/",
		SrcPaths:    ". ./src",
		IncPaths:    ". ./includes",
		LibPaths:    "$(INSTALL_ROOT)/$(TARGET)",
		CCFlags:     "-Wall -Wextra",
		Release:     "-O2 -DNDEBUG -Werror",
		Debug:       "-g -O0 -D_FORTIFY_SOURCE=2",
		Compile:     "$(CC) $(CCFLAGS) [DEBUG_OR_RELEASE] -I[INCPATHS] -o [OBJPATH] -c [SRCPATH]",
		Link:        "$(CC) $(LDFLAGS) [OBJS] -L[LIBPATHS] $(LIBS) -o [BINPATH]",
		LinkStatic:  "ar rcs [BINPATH].a [OBJS]",
		LinkShared:  "$(CC) -shared -fPIC $(LDFLAGS) [OBJS] -L[LIBPATHS] $(LIBS) -o [BINPATH].so",
	}
}

// newTargetOptions seeds a fresh BuildOptions for a named target by
// copying every optCopyFromDefault field from def, matching init_opts.
func newTargetOptions(def *BuildOptions, name string) *BuildOptions {
	o := &BuildOptions{
		Target:       name,
		Type:         def.Type,
		SOVersion:    def.SOVersion,
		LastModified: def.LastModified,
	}
	for _, od := range optionDefs {
		if od.flags&optCopyFromDefault != 0 {
			*od.get(o) = *od.get(def)
		}
	}
	return o
}

// findOption looks up the option whose name is a case-insensitive prefix
// match of key (ignoring a trailing "+"), the way the original's
// match_opt does.
func findOption(key string) *optionDef {
	bare := strings.TrimSuffix(key, "+")
	for i := range optionDefs {
		if strings.EqualFold(optionDefs[i].name, bare) {
			return &optionDefs[i]
		}
	}
	return nil
}

func isAppendKey(key string) bool {
	return strings.HasSuffix(key, "+")
}

// applyStringOption runs the STRING handler: overwrite, or append with a
// single separating space when the key carries a trailing "+".
func applyStringOption(def *optionDef, opts *BuildOptions, key, value string) error {
	field := def.get(opts)
	if isAppendKey(key) {
		if def.flags&optAppendAllowed == 0 {
			return fmt.Errorf("config error: append to %s not supported", def.name)
		}
		if *field == "" {
			*field = value
		} else {
			*field = *field + " " + value
		}
		return nil
	}
	*field = value
	return nil
}

// applySOVersion runs the INTEGER handler for SO_VERSION.
func applySOVersion(opts *BuildOptions, key, value string) error {
	if isAppendKey(key) {
		return fmt.Errorf("config error: append to SO_VERSION not supported")
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return fmt.Errorf("config error: SO_VERSION not a valid number: %q", value)
	}
	opts.SOVersion = n
	return nil
}

// applyTypeOption runs the TYPE_BITMASK handler.
func applyTypeOption(opts *BuildOptions, key, value string) error {
	var t targetType
	if strings.Contains(value, "bin") {
		t |= typeBin
	}
	if strings.Contains(value, "shared") {
		t |= typeShared
	}
	if strings.Contains(value, "static") {
		t |= typeStatic
	}
	if strings.Contains(value, "lib") {
		t |= typeShared | typeStatic
	}
	if isAppendKey(key) {
		opts.Type |= t
	} else {
		opts.Type = t
	}
	if opts.Type == 0 {
		return fmt.Errorf("config error: invalid TYPE: %q (options: bin, shared, static, lib)", value)
	}
	return nil
}

// applyOption dispatches a parsed key/value pair to the right handler for
// either a registered string option or one of the two special-cased
// scalar options (TARGET is handled by the caller, never here).
func applyOption(opts *BuildOptions, key, value string) error {
	bare := strings.TrimSuffix(key, "+")
	switch {
	case strings.EqualFold(bare, "TYPE"):
		return applyTypeOption(opts, key, value)
	case strings.EqualFold(bare, "SO_VERSION"):
		return applySOVersion(opts, key, value)
	}
	def := findOption(key)
	if def == nil {
		return fmt.Errorf("config error: unknown option: %q", key)
	}
	return applyStringOption(def, opts, key, value)
}
