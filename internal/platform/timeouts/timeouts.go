// Package timeouts defines default durations shared by the commands.
package timeouts

import "time"

// ScenarioStep caps a single scenario step, battle start included.
const ScenarioStep = 10 * time.Second

// TelemetryShutdown limits how long a command waits for pending spans to
// flush on exit.
const TelemetryShutdown = 5 * time.Second
