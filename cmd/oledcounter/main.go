// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// oledcounter prints two static lines and an incrementing counter on the panel.
//
// Use -term or -http to mirror the panel, -no-panel to run without one.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/GermanBionicSystems/oleddemo/internal/cli"
)

func main() {
	if err := cli.Main(cli.Counter, os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("oledcounter failed")
	}
}
