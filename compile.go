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
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

var translationUnitExts = map[string]bool{
	".c":   true,
	".C":   true,
	".cc":  true,
	".cpp": true,
}

// ObjectList is the multi-producer, single-consumer append-only list of
// output object paths. Writes happen concurrently from compile tasks;
// reads happen once, post-fence, from the driver goroutine. A
// mutex-guarded slice is all this needs -- the original uses a
// mutex-guarded singly-linked list for the same reason.
type ObjectList struct {
	mu    sync.Mutex
	paths []string
}

func (l *ObjectList) append(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

// Paths returns a snapshot of the accumulated object paths in append
// order. Only safe to call once the producing fence has returned.
func (l *ObjectList) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}

func (l *ObjectList) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = nil
}

// sourceInfo is the transient per-source record computed during a compile
// task; it never outlives the task.
type sourceInfo struct {
	relpath           string
	effectiveMtime    int64
	isTranslationUnit bool
	hasEntryPoint     bool
}

// dispatchCompiles enumerates every regular file under each of
// opts.SrcPaths's space-separated roots and submits one compile task per
// file to the pool. Overlapping roots (e.g. the default ". ./src") are
// deduplicated by canonical absolute path so the entry/library object
// lists stay duplicate-free.
func (bs *BuildState) dispatchCompiles() error {
	seen := make(map[string]bool)
	var seenMu sync.Mutex

	for _, root := range strings.Fields(bs.opts.SrcPaths) {
		root := root
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("error: walking %s: %w", path, err)
			}
			if d.IsDir() {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}
			seenMu.Lock()
			dup := seen[abs]
			seen[abs] = true
			seenMu.Unlock()
			if dup {
				return nil
			}
			bs.pool.Submit(func() { bs.compileOne(abs) })
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// compileOne checks one source file's freshness and, if stale, compiles it.
func (bs *BuildState) compileOne(absPath string) {
	ext := filepath.Ext(absPath)
	if !translationUnitExts[ext] {
		return
	}

	relpath, err := filepath.Rel(bs.root, absPath)
	if err != nil {
		relpath = absPath
	}

	src := sourceInfo{
		relpath:           relpath,
		isTranslationUnit: true,
		effectiveMtime:    bs.scanner.effectiveMtime(relpath),
		hasEntryPoint:     hasEntryPoint(relpath),
	}

	objpath := objectPathFor(bs.opts.BuildRoot, relpath)
	if src.hasEntryPoint {
		bs.entryObjects.append(objpath)
	} else {
		bs.libraryObjects.append(objpath)
	}

	objMtime := mtimeOf(objpath)
	if objMtime > src.effectiveMtime && objMtime > bs.opts.LastModified {
		glog.V(1).Infof("up to date: %s", objpath)
		return
	}

	if err := os.MkdirAll(filepath.Dir(objpath), 0o755); err != nil {
		bs.recordError(fmt.Errorf("error: creating %s: %w", filepath.Dir(objpath), err))
		return
	}

	command := strings.NewReplacer(
		"[OBJPATH]", objpath,
		"[SRCPATH]", relpath,
	).Replace(bs.opts.Compile)

	glog.V(1).Infof("compile: %s", command)
	if err := runShell(command); err != nil {
		bs.recordError(fmt.Errorf("*** [%s] Error %d", objpath, exitStatus(err)))
	}
}

// objectPathFor joins buildRoot with a source's relative path and changes
// its extension to ".o".
func objectPathFor(buildRoot, relpath string) string {
	joined := filepath.Join(buildRoot, relpath)
	return strings.TrimSuffix(joined, filepath.Ext(joined)) + ".o"
}

func mtimeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.ModTime().Unix()
}

// runShell executes command through the platform shell.
func runShell(command string) error {
	cmd := exec.Command("sh", "-c", command)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		fmt.Printf("%s", out)
	}
	return err
}

// exitStatus extracts a child process's exit code, matching kati's
// worker.go exitStatus helper.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok {
			return ws.ExitStatus()
		}
	}
	return 1
}

// tidyPathList rewrites a space-separated path list so every entry
// carries prefix ("-I" or "-L"); entries already carrying it are left
// untouched.
func tidyPathList(list, prefix string) string {
	fields := strings.Fields(list)
	for i, f := range fields {
		if !strings.HasPrefix(f, prefix) {
			fields[i] = prefix + f
		}
	}
	return strings.Join(fields, " ")
}

// resolveCompileTemplate pre-processes the per-target compile command
// template: [DEBUG_OR_RELEASE] becomes the target's release or debug
// flags, and "-I[INCPATHS]" becomes the (already-tidied) incpaths list.
func resolveCompileTemplate(opts *BuildOptions, release bool) string {
	debugOrRelease := opts.Debug
	if release {
		debugOrRelease = opts.Release
	}
	return strings.NewReplacer(
		"[DEBUG_OR_RELEASE]", debugOrRelease,
		"-I[INCPATHS]", opts.IncPaths,
	).Replace(opts.Compile)
}
