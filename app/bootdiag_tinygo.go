//go:build tinygo && bootdebug

package app

import (
	"machine"
	"sync"
	"time"

	"dclock/hal"
)

var (
	bootMu    sync.Mutex
	bootStep  string
	bootStart time.Time
)

func bootDiagSetStep(step string) {
	bootMu.Lock()
	bootStep = step
	bootMu.Unlock()
}

// bootDiagStart repeats the current boot step on the console and USB CDC
// until the clock reports "running", so a hang shows where it stopped.
func bootDiagStart(h hal.HAL) {
	if h == nil {
		return
	}
	l := h.Logger()
	bootStart = time.Now()

	go func() {
		for {
			bootMu.Lock()
			step := bootStep
			bootMu.Unlock()

			line := "boot: " + step + " +" + time.Since(bootStart).Round(time.Millisecond).String()
			if l != nil {
				l.WriteLineString(line)
			}
			if usb := machine.USBCDC; usb != nil {
				_, _ = usb.Write([]byte(line + "\r\n"))
			}
			if step == "running" {
				return
			}
			time.Sleep(250 * time.Millisecond)
		}
	}()
}
