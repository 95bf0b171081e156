// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"log"

	"flvkit"
)

func main() {
	if err := flvkit.Run(); err != nil {
		log.Fatal(err)
	}
}
