package layout

import (
	"context"
	"time"
)

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

type noopLiveChannel struct{}

func (noopLiveChannel) Covers(string) bool { return false }

func normalizeLiveChannel(c LiveChannel) LiveChannel {
	if c == nil {
		return noopLiveChannel{}
	}
	return c
}

type noopHaptics struct{}

func (noopHaptics) Pulse(time.Duration) {}

func normalizeHaptics(h Haptics) Haptics {
	if h == nil {
		return noopHaptics{}
	}
	return h
}
