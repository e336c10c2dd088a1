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
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFileAt(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestIncludesOf(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.c")
	writeFileAt(t, src, "#include <stdio.h>\n#include \"local.h\"\nint main() {}\n", time.Now())

	got := includesOf(src)
	want := []string{"stdio.h", "local.h"}
	if len(got) != len(want) {
		t.Fatalf("includesOf = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("includesOf[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEffectiveMtimePropagatesFromHeader(t *testing.T) {
	dir := t.TempDir()
	// Include names are resolved against the working directory (the
	// project root during a build), so run from the directory holding
	// both files.
	chdirForTest(t, dir)
	base := time.Now().Add(-time.Hour)
	later := base.Add(10 * time.Minute)

	header := filepath.Join(dir, "local.h")
	src := filepath.Join(dir, "main.c")
	writeFileAt(t, header, "void f();\n", later)
	writeFileAt(t, src, "#include \"local.h\"\nint main() {}\n", base)

	s := newIncludeScanner()
	got := s.effectiveMtime(src)
	if got != later.Unix() {
		t.Errorf("effectiveMtime = %d, want %d (the header's mtime)", got, later.Unix())
	}
}

func TestEffectiveMtimeMemoizesAndBreaksCycles(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	now := time.Now()

	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.h")
	writeFileAt(t, a, "#include \"b.h\"\n", now)
	writeFileAt(t, b, "#include \"a.h\"\n", now)

	s := newIncludeScanner()
	done := make(chan int64, 1)
	go func() { done <- s.effectiveMtime(a) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("effectiveMtime did not terminate on a cyclic include graph")
	}

	if _, ok := s.memo[a]; !ok {
		t.Error("expected a.h to be memoized after the scan")
	}
}

func TestHasEntryPoint(t *testing.T) {
	for _, tc := range []struct {
		name string
		body string
		want bool
	}{
		{"plain", "int main() { return 0; }\n", true},
		{"library", "void helper() {}\n", false},
		{"in_line_comment", "// int main() {}\nvoid helper() {}\n", false},
		{"in_block_comment", "/* int main() {} */\nvoid helper() {}\n", false},
		{"in_string", "const char *s = \"int main(\";\nvoid helper() {}\n", false},
		{"after_block_comment", "/* disabled\nint main() {} */\nint main() { return 1; }\n", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "src.c")
			writeFileAt(t, path, tc.body, time.Now())
			if got := hasEntryPoint(path); got != tc.want {
				t.Errorf("hasEntryPoint(%q) = %v, want %v", tc.body, got, tc.want)
			}
		})
	}
}
