package scenario

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// AssertionMode decides what a failed expectation does.
type AssertionMode int

const (
	// AssertionStrict stops the scenario at the first failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed expectations and keeps going.
	AssertionLogOnly
)

func (m AssertionMode) String() string {
	if m == AssertionLogOnly {
		return "logonly"
	}
	return "strict"
}

// ParseAssertionMode resolves "strict" or "logonly". Blank is strict.
func ParseAssertionMode(name string) (AssertionMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "strict":
		return AssertionStrict, nil
	case "logonly", "log-only", "log":
		return AssertionLogOnly, nil
	default:
		return AssertionStrict, fmt.Errorf("unknown assertion mode %q", name)
	}
}

// Assertions reports failed expectations according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger logrus.FieldLogger

	failures []string
}

// Failf records a failure. In strict mode it returns the failure as an
// error; in log-only mode it logs it and returns nil.
func (a *Assertions) Failf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	a.failures = append(a.failures, msg)
	if a.Mode == AssertionStrict {
		return fmt.Errorf("assertion failed: %s", msg)
	}
	if a.Logger != nil {
		a.Logger.WithField("assertion", "failed").Warn(msg)
	}
	return nil
}

// Failures returns every recorded failure message.
func (a *Assertions) Failures() []string {
	return append([]string(nil), a.failures...)
}
