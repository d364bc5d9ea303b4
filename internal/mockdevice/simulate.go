package mockdevice

import (
	"context"
	"fmt"
	"math"
	"time"
)

// ESP-IDF console colors: the firmware wraps each line in "\x1b[0;3Xm" and a
// trailing reset.
const (
	colorError = "\x1b[0;31m"
	colorWarn  = "\x1b[0;33m"
	colorInfo  = "\x1b[0;32m"
	colorReset = "\x1b[0m"
)

type lineTemplate struct {
	color string
	level byte
	tag   string
	msg   string
}

var templates = []lineTemplate{
	{colorInfo, 'I', "bm1370Module", "Job ID: %02x, Core: %d/1280, Ver: 20000000"},
	{colorInfo, 'I', "asic_result", "Ver: 20000000 Nonce %08x diff %d of 4096."},
	{colorInfo, 'I', "stratum_task", "rx: {\"id\":%d,\"method\":\"mining.notify\",\"params\":[\"%x\"]}"},
	{"", 'D', "power_management", "vin: %d mV, iin: %d mA"},
	{colorWarn, 'W', "stratum_task", "Stratum connection slow, reconnecting in %d s (%d)"},
	{colorInfo, 'I', "create_jobs_task", "New Work Dequeued %02x (%d)"},
	{colorError, 'E', "asic_result", "Duplicate nonce %08x dropped (%d)"},
}

// SampleLine renders the seq-th simulated console line at the given uptime.
func SampleLine(seq int, uptime time.Duration) string {
	tpl := templates[seq%len(templates)]
	msg := fmt.Sprintf(tpl.msg, seq%256, (seq*7)%1280)
	line := fmt.Sprintf("%c (%d) %s: %s", tpl.level, uptime.Milliseconds(), tpl.tag, msg)
	if tpl.color == "" {
		return line
	}
	return tpl.color + line + colorReset
}

// Run publishes a simulated log line and perturbs the telemetry every tick
// until ctx is cancelled.
func (d *Device) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for seq := 0; ; seq++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		d.Publish(SampleLine(seq, time.Since(d.started)))
		d.wobble(seq)
	}
}

// wobble nudges the electrical readings so the dashboard visibly updates.
func (d *Device) wobble(seq int) {
	phase := math.Sin(float64(seq) / 5)

	d.mu.Lock()
	defer d.mu.Unlock()
	base := DefaultInfo()
	d.info.Power = base.Power + phase*0.6
	d.info.Current = base.Current + phase*110
	d.info.CoreVoltageActual = base.CoreVoltageActual + phase*6
	d.info.HashRate = base.HashRate + phase*35
	d.info.Temp = base.Temp + phase*1.5
}
