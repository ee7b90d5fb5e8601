/*******************************************************************************
*
* Copyright 2024 Holo contributors
*
* This file is part of Holo.
*
* Holo is free software: you can redistribute it and/or modify it under the
* terms of the GNU General Public License as published by the Free Software
* Foundation, either version 3 of the License, or (at your option) any later
* version.
*
* Holo is distributed in the hope that it will be useful, but WITHOUT ANY
* WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR
* A PARTICULAR PURPOSE. See the GNU General Public License for more details.
*
* You should have received a copy of the GNU General Public License along with
* Holo. If not, see <http://www.gnu.org/licenses/>.
*
*******************************************************************************/

package main

import (
	"os"

	"github.com/holocm/holo-pkg/internal/buildlog"
	"github.com/holocm/holo-pkg/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	buildlog.Configure(buildlog.Options{
		Verbose: os.Getenv("HOLO_PKG_DEBUG") != "",
		Format:  os.Getenv("HOLO_PKG_LOG_FORMAT"),
	})

	cli.SetVersion(version)
	os.Exit(cli.Execute())
}
