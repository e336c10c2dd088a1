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

import "testing"

func TestNewTargetOptionsCopiesDefault(t *testing.T) {
	def := defaultBuildOptions()
	def.CCFlags = "-Wall -Wextra -std=c11"

	got := newTargetOptions(def, "backend")
	if got.Target != "backend" {
		t.Errorf("Target = %q, want %q", got.Target, "backend")
	}
	if got.CCFlags != def.CCFlags {
		t.Errorf("CCFlags = %q, want copy of default %q", got.CCFlags, def.CCFlags)
	}
	if got.Type != def.Type {
		t.Errorf("Type = %v, want copy of default %v", got.Type, def.Type)
	}

	// mutating the copy must not affect the default.
	got.CCFlags = "-O3"
	if def.CCFlags == "-O3" {
		t.Errorf("mutating target options leaked back into the default")
	}
}

func TestApplyStringOptionOverwriteAndAppend(t *testing.T) {
	opts := defaultBuildOptions()
	def := findOption("CCFLAGS")
	if def == nil {
		t.Fatal("CCFLAGS not found in option registry")
	}

	if err := applyStringOption(def, opts, "CCFLAGS", "-Wall"); err != nil {
		t.Fatal(err)
	}
	if opts.CCFlags != "-Wall" {
		t.Errorf("CCFlags = %q, want %q", opts.CCFlags, "-Wall")
	}

	if err := applyStringOption(def, opts, "CCFLAGS+", "-Wextra"); err != nil {
		t.Fatal(err)
	}
	if want := "-Wall -Wextra"; opts.CCFlags != want {
		t.Errorf("CCFlags after append = %q, want %q", opts.CCFlags, want)
	}
}

func TestApplyStringOptionAppendNotSupported(t *testing.T) {
	opts := defaultBuildOptions()
	def := findOption("CC")
	if def == nil {
		t.Fatal("CC not found in option registry")
	}
	if err := applyStringOption(def, opts, "CC+", "clang"); err == nil {
		t.Error("expected an error appending to a non-appendable option, got nil")
	}
}

func TestApplyTypeOption(t *testing.T) {
	for _, tc := range []struct {
		value   string
		want    targetType
		wantErr bool
	}{
		{value: "bin", want: typeBin},
		{value: "static", want: typeStatic},
		{value: "shared", want: typeShared},
		{value: "lib", want: typeShared | typeStatic},
		{value: "bin static", want: typeBin | typeStatic},
		{value: "nonsense", wantErr: true},
	} {
		opts := &BuildOptions{}
		err := applyTypeOption(opts, "TYPE", tc.value)
		if tc.wantErr {
			if err == nil {
				t.Errorf("applyTypeOption(%q): expected error, got nil", tc.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("applyTypeOption(%q): unexpected error: %v", tc.value, err)
			continue
		}
		if opts.Type != tc.want {
			t.Errorf("applyTypeOption(%q) = %v, want %v", tc.value, opts.Type, tc.want)
		}
	}
}

func TestApplyTypeOptionAppend(t *testing.T) {
	opts := &BuildOptions{Type: typeBin}
	if err := applyTypeOption(opts, "TYPE+", "static"); err != nil {
		t.Fatal(err)
	}
	if opts.Type != typeBin|typeStatic {
		t.Errorf("Type = %v, want typeBin|typeStatic", opts.Type)
	}
}

func TestApplySOVersion(t *testing.T) {
	opts := &BuildOptions{}
	if err := applySOVersion(opts, "SO_VERSION", "3"); err != nil {
		t.Fatal(err)
	}
	if opts.SOVersion != 3 {
		t.Errorf("SOVersion = %d, want 3", opts.SOVersion)
	}
	if err := applySOVersion(opts, "SO_VERSION", "not-a-number"); err == nil {
		t.Error("expected error for non-numeric SO_VERSION")
	}
}

func TestFindOptionCaseInsensitivePrefix(t *testing.T) {
	if findOption("ccflags") == nil {
		t.Error("findOption should match case-insensitively")
	}
	if findOption("CCFLAGS+") == nil {
		t.Error("findOption should strip a trailing + before matching")
	}
	if findOption("NOT_AN_OPTION") != nil {
		t.Error("findOption should return nil for an unknown key")
	}
}

func TestApplyOptionUnknownKey(t *testing.T) {
	opts := defaultBuildOptions()
	if err := applyOption(opts, "BOGUS", "x"); err == nil {
		t.Error("expected error for unknown option key")
	}
}
