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
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// BuildRequest is the resolved option struct the CLI (cmd/ccbuild) hands
// to the core, mirroring kati's LoadReq/ExecutorOpt split of "flags
// parsed, request built, library driven".
type BuildRequest struct {
	RootDir      string
	ConfigFile   string
	Release      bool
	TargetFilter string
	Jobs         int
	CleanAll     bool
}

// BuildState is the per-invocation state shared across all targets: the
// target map, the thread pool, the resolved project root, and the
// currently-active target's per-target object lists and options.
type BuildState struct {
	root    string
	req     BuildRequest
	targets *TargetMap
	pool    *Pool
	scanner *includeScanner

	opts           *BuildOptions
	entryObjects   *ObjectList
	libraryObjects *ObjectList

	errMu    sync.Mutex
	firstErr error
}

func (bs *BuildState) recordError(err error) {
	fmt.Println(err)
	bs.errMu.Lock()
	defer bs.errMu.Unlock()
	if bs.firstErr == nil {
		bs.firstErr = err
	}
}

// Build loads the config, then for every target whose name contains
// req.TargetFilter (or every target, if empty) expands its variables,
// dispatches its compiles, fences on their completion, and links its
// outputs, in the order the targets appeared in the config file.
func Build(req BuildRequest) error {
	root, err := filepath.Abs(req.RootDir)
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}
	if err := os.Chdir(root); err != nil {
		return fmt.Errorf("error: cannot chdir to %s: %w", root, err)
	}

	configFile := req.ConfigFile
	if configFile == "" {
		configFile = "ccbuild.ini"
	}
	targets, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	jobs := req.Jobs
	if jobs < 1 {
		jobs = 1
	}

	bs := &BuildState{
		root:           root,
		req:            req,
		targets:        targets,
		pool:           NewPool(jobs, defaultQueueCapacity),
		scanner:        newIncludeScanner(),
		entryObjects:   &ObjectList{},
		libraryObjects: &ObjectList{},
	}
	defer bs.pool.Shutdown()

	// A failing target does not stop the remaining targets from being
	// attempted -- matching the original's build_target_cb, whose return
	// value is discarded by its trie-iteration driver. The first error
	// seen across all targets is still surfaced as the overall result.
	var buildErr error
	for _, opts := range targets.Targets() {
		if req.TargetFilter != "" && !strings.Contains(opts.Target, req.TargetFilter) {
			continue
		}
		if err := bs.buildTarget(opts); err != nil && buildErr == nil {
			buildErr = err
		}
	}
	return buildErr
}

// buildTarget expands one target's variables, compiles its stale
// sources, fences on their completion, and links its outputs.
func (bs *BuildState) buildTarget(opts *BuildOptions) error {
	glog.Infof("building target %q", opts.Target)

	bs.entryObjects.reset()
	bs.libraryObjects.reset()
	bs.opts = opts
	bs.firstErr = nil

	if err := ExpandVariables(opts); err != nil {
		return err
	}

	opts.IncPaths = tidyPathList(opts.IncPaths, "-I")
	opts.LibPaths = tidyPathList(opts.LibPaths, "-L")

	opts.Compile = resolveCompileTemplate(opts, bs.req.Release)
	opts.Link = resolveLinkTemplate(opts.Link, opts.LibPaths)
	opts.LinkShared = resolveLinkTemplate(opts.LinkShared, opts.LibPaths)
	opts.LinkStatic = resolveLinkTemplate(opts.LinkStatic, opts.LibPaths)

	// Fence unconditionally, even when dispatchCompiles itself failed
	// partway through (e.g. an unreadable directory under one of several
	// SrcPaths roots): tasks for files seen before the error were already
	// submitted to the pool, and bs.opts/bs.entryObjects/bs.libraryObjects
	// get reassigned to the next target as soon as this call returns, so
	// those in-flight tasks must drain against *this* target's state
	// before that happens.
	dispatchErr := bs.dispatchCompiles()
	bs.pool.Fence()
	if dispatchErr != nil {
		return dispatchErr
	}

	bs.linkStage()

	if bs.firstErr != nil {
		return bs.firstErr
	}
	return nil
}

// Clean removes the build tree for every selected target, and also the
// install tree when req.CleanAll is set.
func Clean(req BuildRequest) error {
	root, err := filepath.Abs(req.RootDir)
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}
	if err := os.Chdir(root); err != nil {
		return fmt.Errorf("error: cannot chdir to %s: %w", root, err)
	}

	configFile := req.ConfigFile
	if configFile == "" {
		configFile = "ccbuild.ini"
	}
	targets, err := LoadConfig(configFile)
	if err != nil {
		return err
	}

	for _, opts := range targets.Targets() {
		if req.TargetFilter != "" && !strings.Contains(opts.Target, req.TargetFilter) {
			continue
		}
		if err := ExpandVariables(opts); err != nil {
			return err
		}
		glog.Infof("cleaning target %q: %s", opts.Target, opts.BuildRoot)
		if err := os.RemoveAll(opts.BuildRoot); err != nil {
			return fmt.Errorf("error: %w", err)
		}
		if req.CleanAll {
			glog.Infof("cleaning target %q: %s", opts.Target, opts.InstallRoot)
			if err := os.RemoveAll(opts.InstallRoot); err != nil {
				return fmt.Errorf("error: %w", err)
			}
		}
	}
	return nil
}
