// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oledbounce bounces the logo up and down the panel, holding it for a few seconds at the top and the bottom.
//
// Use -term or -http to mirror the panel, -no-panel to run without one.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/GermanBionicSystems/oleddemo/internal/cli"
)

func main() {
	if err := cli.Main(cli.Bounce, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("oledbounce failed")
	}
}
