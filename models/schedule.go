package models

// ScheduleKind values for CronSchedule.
const (
	ScheduleAt    = "at"    // one-shot absolute timestamp
	ScheduleEvery = "every" // fixed repeating interval
	ScheduleCron  = "cron"  // five/six-field cron expression
)

// CronSchedule is the structured result of schedule parsing. Exactly one of
// the shape fields is meaningful, selected by Kind.
type CronSchedule struct {
	Kind       string `json:"kind" validate:"required,oneof=at every cron"`
	AtMs       int64  `json:"atMs,omitempty"`       // epoch ms for one-shot
	EveryMs    int64  `json:"everyMs,omitempty"`    // interval in milliseconds
	Expression string `json:"expression,omitempty"` // cron expression, e.g. "0 9 * * 1"
	Timezone   string `json:"timezone,omitempty"`   // IANA name, cron kind only
}

// ScheduleMode describes how a process schedule is driven.
type ScheduleMode string

const (
	ModeManual      ScheduleMode = "manual"
	ModeOnce        ScheduleMode = "once"
	ModeRecurring   ScheduleMode = "recurring"
	ModeEventDriven ScheduleMode = "event-driven"
)

// ProcessSchedule attaches a schedule to a process. TriggerEvents is only
// consulted in event-driven mode.
type ProcessSchedule struct {
	Mode          ScheduleMode  `json:"mode" validate:"required,oneof=manual once recurring event-driven"`
	Cron          *CronSchedule `json:"cron,omitempty"`
	TriggerEvents []string      `json:"triggerEvents,omitempty"`
}
