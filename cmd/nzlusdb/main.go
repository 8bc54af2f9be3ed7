// Copyright © 2025 Baptiste Hamon
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// NZLUSDB is a tool for land use suitability analysis
// of New Zealand crops under climate change.
package main

import (
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/change"
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/crops"
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/index"
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/mapcmd"
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/plot"
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/prj"
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/runcmd"
	"github.com/baptistehamon/nzlusdb/cmd/nzlusdb/statscmd"
	"github.com/js-arias/command"
)

var app = &command.Command{
	Usage: "nzlusdb <command> [<argument>...]",
	Short: "a tool for land use suitability analysis",
}

func init() {
	app.Add(prj.Command)
	app.Add(crops.Command)
	app.Add(index.Command)
	app.Add(runcmd.Command)
	app.Add(change.Command)
	app.Add(statscmd.Command)
	app.Add(mapcmd.Command)
	app.Add(plot.Command)
}

func main() {
	app.Main()
}
