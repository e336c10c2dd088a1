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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/jpxor/ccbuild"
)

var (
	configFlag  string
	jobsFlag    int
	releaseFlag bool
	targetFlag  string
	allFlag     bool
)

func init() {
	flag.StringVar(&configFlag, "f", "ccbuild.ini", "config file to read")
	flag.IntVar(&jobsFlag, "j", 1, "allow N compiles at once")
	flag.BoolVar(&releaseFlag, "release", false, "build with release flags instead of debug")
	flag.BoolVar(&releaseFlag, "r", false, "shorthand for -release")
	flag.StringVar(&targetFlag, "target", "", "only build targets whose name contains this substring")
	flag.StringVar(&targetFlag, "t", "", "shorthand for -target")
	flag.BoolVar(&allFlag, "all", false, "clean: also remove install_root, not just build_root")
}

func main() {
	flag.Parse()

	cmd := "build"
	args := flag.Args()
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	rootdir := "."
	if len(args) > 0 {
		rootdir = args[0]
	}

	req := ccbuild.BuildRequest{
		RootDir:      rootdir,
		ConfigFile:   configFlag,
		Release:      releaseFlag,
		TargetFilter: targetFlag,
		Jobs:         jobsFlag,
		CleanAll:     allFlag,
	}

	if err := run(cmd, req); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd string, req ccbuild.BuildRequest) error {
	defer glog.Flush()
	switch cmd {
	case "build":
		return ccbuild.Build(req)
	case "clean":
		return ccbuild.Clean(req)
	default:
		return fmt.Errorf("error: unknown command %q (want \"build\" or \"clean\")", cmd)
	}
}
