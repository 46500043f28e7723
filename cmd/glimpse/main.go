// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Glimpse Contributors

package main

import (
	"os"

	"github.com/spf13/viper"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err, viper.GetBool("verbose"))
		os.Exit(1)
	}
}
