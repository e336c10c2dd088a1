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

	"github.com/golang/glog"
)

// resolveLinkTemplate pre-processes the link templates' path-list
// placeholder ("-L[LIBPATHS]") the same way resolveCompileTemplate
// handles the compile template, applied to link/link_shared/link_static
// alike.
func resolveLinkTemplate(template, libpaths string) string {
	return strings.ReplaceAll(template, "-L[LIBPATHS]", libpaths)
}

// linkStage links the current target's outputs after the compile fence
// has returned: one executable per entry-point object, plus a shared
// and/or static library from the library-object list for each of the
// SHARED/STATIC bits set in TYPE. linkLibraries is also entered when there
// were no entry-point objects, but with neither bit set it links nothing.
func (bs *BuildState) linkStage() {
	opts := bs.opts
	libObjs := bs.libraryObjects.Paths()
	entryObjs := bs.entryObjects.Paths()

	if opts.Type&typeBin != 0 {
		for _, obj := range entryObjs {
			bs.linkExecutable(obj, libObjs)
		}
	}

	if opts.Type&(typeShared|typeStatic) != 0 || len(entryObjs) == 0 {
		bs.linkLibraries(libObjs)
	}
}

// linkExecutable links one entry-point object against every library
// object into an executable named after the source (directory and first
// "."-suffix stripped), installed under install_root/installdir.
func (bs *BuildState) linkExecutable(entryObj string, libObjs []string) {
	opts := bs.opts
	base := filepath.Base(entryObj)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}

	binpath := filepath.Join(opts.InstallRoot, opts.InstallDir, base)
	if err := os.MkdirAll(filepath.Dir(binpath), 0o755); err != nil {
		bs.recordError(fmt.Errorf("error: creating %s: %w", filepath.Dir(binpath), err))
		return
	}

	objs := append(append([]string{}, libObjs...), entryObj)
	command := strings.NewReplacer(
		"[OBJS]", strings.Join(objs, " "),
		"[BINPATH]", binpath,
	).Replace(opts.Link)

	glog.Infof("linking exec %q", binpath)
	glog.V(1).Infof("link: %s", command)
	if err := runShell(command); err != nil {
		bs.recordError(fmt.Errorf("*** [%s] Error %d", binpath, exitStatus(err)))
	}
}

// linkLibraries produces a shared and/or static library from every
// library object, named after libname (falling back to the target name),
// "lib"-prefixed unless already prefixed.
func (bs *BuildState) linkLibraries(libObjs []string) {
	opts := bs.opts
	name := opts.LibName
	if name == "" {
		name = opts.Target
	}
	if !strings.HasPrefix(name, "lib") {
		name = "lib" + name
	}

	binpath := filepath.Join(opts.InstallRoot, opts.InstallDir, name)
	if err := os.MkdirAll(filepath.Dir(binpath), 0o755); err != nil {
		bs.recordError(fmt.Errorf("error: creating %s: %w", filepath.Dir(binpath), err))
		return
	}

	objs := strings.Join(libObjs, " ")

	if opts.Type&typeShared != 0 {
		command := strings.NewReplacer("[OBJS]", objs, "[BINPATH]", binpath).Replace(opts.LinkShared)
		glog.Infof("linking shared %q", binpath)
		glog.V(1).Infof("link: %s", command)
		if err := runShell(command); err != nil {
			bs.recordError(fmt.Errorf("*** [%s] Error %d", binpath, exitStatus(err)))
		}
	}

	if opts.Type&typeStatic != 0 {
		command := strings.NewReplacer("[OBJS]", objs, "[BINPATH]", binpath).Replace(opts.LinkStatic)
		glog.Infof("linking static %q", binpath)
		glog.V(1).Infof("link: %s", command)
		if err := runShell(command); err != nil {
			bs.recordError(fmt.Errorf("*** [%s] Error %d", binpath, exitStatus(err)))
		}
	}
}
