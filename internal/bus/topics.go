// internal/bus/topics.go
package bus

import "fmt"

// Topic identifies one message class. The enumeration is contiguous with
// sentinel values at both ends; sentinels are never legal as a real topic.
type Topic uint8

const (
	topicFirst Topic = iota // boundary sentinel, never published

	// Console self-test.
	TopicLoopback

	// Per-module log verbosity toggles (1-byte bool payload).
	TopicLogControl
	TopicLogDesk
	TopicLogPresence

	// Desk motion.
	TopicDeskMove     // 1 command byte
	TopicDeskToggle   // no payload
	TopicHeightQuery  // no payload
	TopicHeightUpdate // u32, height in tenths of a centimeter

	// Presence.
	TopicPresenceDetected // no payload
	TopicPresenceLost     // no payload
	TopicThresholdSet     // u32, minimum close-device count
	TopicThresholdGet     // no payload
	TopicThresholdValue   // u32, answer to TopicThresholdGet

	// Countdown timer.
	TopicCountdownStart // u32, duration in milliseconds
	TopicCountdownStop  // no payload
	TopicCountdownDone  // no payload

	// Sit/stand interval.
	TopicIntervalSet   // u32, minutes
	TopicIntervalGet   // no payload
	TopicIntervalValue // u32, answer to TopicIntervalGet

	topicLast // boundary sentinel, never published
)

var topicNames = [...]string{
	TopicLoopback:         "loopback",
	TopicLogControl:       "log-control",
	TopicLogDesk:          "log-desk",
	TopicLogPresence:      "log-presence",
	TopicDeskMove:         "desk-move",
	TopicDeskToggle:       "desk-toggle",
	TopicHeightQuery:      "height-query",
	TopicHeightUpdate:     "height-update",
	TopicPresenceDetected: "presence-detected",
	TopicPresenceLost:     "presence-lost",
	TopicThresholdSet:     "threshold-set",
	TopicThresholdGet:     "threshold-get",
	TopicThresholdValue:   "threshold-value",
	TopicCountdownStart:   "countdown-start",
	TopicCountdownStop:    "countdown-stop",
	TopicCountdownDone:    "countdown-done",
	TopicIntervalSet:      "interval-set",
	TopicIntervalGet:      "interval-get",
	TopicIntervalValue:    "interval-value",
}

// valid reports whether t lies strictly between the sentinels.
func (t Topic) valid() bool {
	return t > topicFirst && t < topicLast
}

func (t Topic) String() string {
	if !t.valid() {
		return fmt.Sprintf("topic(%d)", uint8(t))
	}
	return topicNames[t]
}
