//go:build !(tinygo && bootdebug)

package app

import "dclock/hal"

func bootDiagStart(hal.HAL) {}

func bootDiagSetStep(string) {}
