//go:build tinygo

package main

import (
	"dclock/app"
	"dclock/hal"
	"dclock/internal/config"
)

func main() {
	app.Run(hal.New(), config.DefaultConfig())
}
