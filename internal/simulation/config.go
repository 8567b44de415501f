package simulation

import (
	"errors"
	"fmt"
	"time"
)

// Range is a closed interval of delays. Values are drawn uniformly.
type Range struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Config tunes the simulation.
type Config struct {
	ReadReceiptDelay          Range         `yaml:"read_receipt_delay"`
	ReplyDelay                Range         `yaml:"reply_delay"`
	TypingDuration            Range         `yaml:"typing_duration"`
	ReplyProbability          float64       `yaml:"reply_probability"`
	CannedResponses           []string      `yaml:"canned_responses"`
	PresenceInterval          time.Duration `yaml:"presence_interval"`
	PresenceToggleProbability float64       `yaml:"presence_toggle_probability"`
}

// DefaultCannedResponses are the replies a simulated counterpart picks from.
var DefaultCannedResponses = []string{
	"That's interesting!",
	"Haha, nice one.",
	"I agree.",
	"Let me think about that.",
	"Okay, sounds good.",
	"Got it, thanks!",
	"👍",
	"Can you explain that a bit more?",
	"I'll get back to you on that.",
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		ReadReceiptDelay:          Range{Min: 2 * time.Second, Max: 4 * time.Second},
		ReplyDelay:                Range{Min: 4 * time.Second, Max: 7 * time.Second},
		TypingDuration:            Range{Min: 2 * time.Second, Max: 5 * time.Second},
		ReplyProbability:          0.7,
		CannedResponses:           append([]string(nil), DefaultCannedResponses...),
		PresenceInterval:          15 * time.Second,
		PresenceToggleProbability: 0.2,
	}
}

// Validate reports every problem with the configuration.
func (c Config) Validate() error {
	var errs []error
	for name, r := range map[string]Range{
		"read_receipt_delay": c.ReadReceiptDelay,
		"reply_delay":        c.ReplyDelay,
		"typing_duration":    c.TypingDuration,
	} {
		if r.Min < 0 || r.Max < r.Min {
			errs = append(errs, fmt.Errorf("%s: invalid range %s..%s", name, r.Min, r.Max))
		}
	}
	if c.ReplyProbability < 0 || c.ReplyProbability > 1 {
		errs = append(errs, fmt.Errorf("reply_probability %v out of [0,1]", c.ReplyProbability))
	}
	if c.PresenceToggleProbability < 0 || c.PresenceToggleProbability > 1 {
		errs = append(errs, fmt.Errorf("presence_toggle_probability %v out of [0,1]", c.PresenceToggleProbability))
	}
	if len(c.CannedResponses) == 0 {
		errs = append(errs, errors.New("canned_responses is empty"))
	}
	if c.PresenceInterval <= 0 {
		errs = append(errs, errors.New("presence_interval must be positive"))
	}
	return errors.Join(errs...)
}
