// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package main

import (
	"os"

	"github.com/Thermoquad/mmm8x8/cmd"
)

func main() {
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
