// Package schedule turns free-text scheduling requests into a structured
// CronSchedule. Parsing is pure and deterministic given the reference time:
// a fixed, ordered list of recognizers is tried most-specific first, and the
// first match wins. A failed parse is a value, never an error.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/procwing/procwing/models"
)

// Result is the outcome of parsing one scheduling phrase.
type Result struct {
	Schedule       *models.CronSchedule `json:"schedule"`
	Confidence     float64              `json:"confidence"`
	Interpretation string               `json:"interpretation,omitempty"`
	Err            string               `json:"error,omitempty"`
}

// recognizer inspects a normalized phrase and returns a Result, or nil to
// fall through to the next recognizer.
type recognizer func(text string, now time.Time) *Result

var recognizers = []recognizer{
	recognizeCronExpr,
	recognizeWeeklyAt,
	recognizeOnceAWeek,
	recognizeDailyAt,
	recognizeEveryInterval,
	recognizeTimesPerDay,
	recognizeInDuration,
	recognizeAtTime,
}

// Parse converts a natural-language scheduling phrase into a CronSchedule.
// The reference time anchors relative phrases ("in 2 hours", "at 9am").
func Parse(text string, now time.Time) Result {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Result{Confidence: 0, Err: "unrecognized format"}
	}
	for _, recognize := range recognizers {
		if res := recognize(normalized, now); res != nil {
			return *res
		}
	}
	return Result{Confidence: 0, Err: "unrecognized format"}
}

var cronFieldRe = regexp.MustCompile(`^[0-9*\-/,]+$`)

// recognizeCronExpr accepts a literal 5- or 6-field cron expression verbatim.
func recognizeCronExpr(text string, _ time.Time) *Result {
	fields := strings.Fields(text)
	if len(fields) != 5 && len(fields) != 6 {
		return nil
	}
	for _, f := range fields {
		if !cronFieldRe.MatchString(f) {
			return nil
		}
	}
	expr := strings.Join(fields, " ")
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleCron, Expression: expr},
		Confidence:     1.0,
		Interpretation: fmt.Sprintf("cron expression %q", expr),
	}
}

var weekdays = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

const dowPattern = `(sunday|monday|tuesday|wednesday|thursday|friday|saturday)s?`

// Time-of-day forms: "9am", "9 am", "3:30pm", "14:00".
const timePattern = `(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`

var weeklyAtRe = regexp.MustCompile(`^every\s+` + dowPattern + `\s+at\s+` + timePattern + `$`)

// recognizeWeeklyAt handles "every monday at 9am".
func recognizeWeeklyAt(text string, _ time.Time) *Result {
	m := weeklyAtRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	hour, minute, ok := clockFromMatch(m[2], m[3], m[4])
	if !ok {
		return nil
	}
	dow := weekdays[m[1]]
	expr := fmt.Sprintf("%d %d * * %d", minute, hour, dow)
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleCron, Expression: expr},
		Confidence:     0.9,
		Interpretation: fmt.Sprintf("weekly on %s at %02d:%02d", m[1], hour, minute),
	}
}

var onceAWeekRe = regexp.MustCompile(`^(?:once\s+a\s+week|weekly)(?:\s+on\s+` + dowPattern + `)?(?:\s+at\s+` + timePattern + `)?$`)

// recognizeOnceAWeek handles "once a week", "weekly on friday at 3pm".
// Day defaults to Monday and time to 09:00 when omitted.
func recognizeOnceAWeek(text string, _ time.Time) *Result {
	m := onceAWeekRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	dow := weekdays["monday"]
	dayName := "monday"
	if m[1] != "" {
		dow = weekdays[m[1]]
		dayName = m[1]
	}
	hour, minute := 9, 0
	if m[2] != "" {
		var ok bool
		hour, minute, ok = clockFromMatch(m[2], m[3], m[4])
		if !ok {
			return nil
		}
	}
	expr := fmt.Sprintf("%d %d * * %d", minute, hour, dow)
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleCron, Expression: expr},
		Confidence:     0.9,
		Interpretation: fmt.Sprintf("weekly on %s at %02d:%02d", dayName, hour, minute),
	}
}

var dailyAtRe = regexp.MustCompile(`^(?:every\s+(?:morning|afternoon|evening|night|day)|daily)(?:\s+at\s+` + timePattern + `)?$`)

// recognizeDailyAt handles "every morning at 7am", "daily at 14:00".
// "every morning" or "daily" with no time means 09:00. "every day" with no
// time is left to the interval recognizer below.
func recognizeDailyAt(text string, _ time.Time) *Result {
	if text == "every day" {
		return nil
	}
	m := dailyAtRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	hour, minute := 9, 0
	if m[1] != "" {
		var ok bool
		hour, minute, ok = clockFromMatch(m[1], m[2], m[3])
		if !ok {
			return nil
		}
	}
	expr := fmt.Sprintf("%d %d * * *", minute, hour)
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleCron, Expression: expr},
		Confidence:     0.85,
		Interpretation: fmt.Sprintf("daily at %02d:%02d", hour, minute),
	}
}

var unitMs = map[string]int64{
	"second": 1000,
	"sec":    1000,
	"minute": 60 * 1000,
	"min":    60 * 1000,
	"hour":   60 * 60 * 1000,
	"hr":     60 * 60 * 1000,
	"day":    24 * 60 * 60 * 1000,
	"week":   7 * 24 * 60 * 60 * 1000,
}

const unitPattern = `(second|sec|minute|min|hour|hr|day|week)s?`

var everyIntervalRe = regexp.MustCompile(`^every\s+(?:(\d+)\s+)?` + unitPattern + `$`)

// recognizeEveryInterval handles "every 30 minutes" and "every hour".
func recognizeEveryInterval(text string, _ time.Time) *Result {
	m := everyIntervalRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n := int64(1)
	if m[1] != "" {
		parsed, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || parsed < 1 {
			return nil
		}
		n = parsed
	}
	every := n * unitMs[m[2]]
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleEvery, EveryMs: every},
		Confidence:     0.9,
		Interpretation: fmt.Sprintf("every %d %s(s)", n, m[2]),
	}
}

var timesPerDayRe = regexp.MustCompile(`^(\d{1,2})\s+times\s+(?:a|per)\s+day$`)

const dayMs = 24 * 60 * 60 * 1000

// recognizeTimesPerDay handles "3 times a day" for 1 to 24 runs.
func recognizeTimesPerDay(text string, _ time.Time) *Result {
	m := timesPerDayRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 24 {
		return nil
	}
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleEvery, EveryMs: int64(dayMs / n)},
		Confidence:     0.8,
		Interpretation: fmt.Sprintf("%d times a day", n),
	}
}

var inDurationRe = regexp.MustCompile(`^in\s+(\d+)\s+` + unitPattern + `$`)

// recognizeInDuration handles "in 20 minutes" as a one-shot timestamp.
func recognizeInDuration(text string, now time.Time) *Result {
	m := inDurationRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n < 1 {
		return nil
	}
	at := now.UnixMilli() + n*unitMs[m[2]]
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleAt, AtMs: at},
		Confidence:     0.95,
		Interpretation: fmt.Sprintf("once, in %d %s(s)", n, m[2]),
	}
}

var atTimeRe = regexp.MustCompile(`^at\s+` + timePattern + `(?:\s+(today|tomorrow))?$`)

// recognizeAtTime handles "at 9am", "at 14:30 tomorrow". A bare time that has
// already passed today rolls to the next day.
func recognizeAtTime(text string, now time.Time) *Result {
	m := atTimeRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	hour, minute, ok := clockFromMatch(m[1], m[2], m[3])
	if !ok {
		return nil
	}
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	day := "today"
	switch m[4] {
	case "tomorrow":
		target = target.AddDate(0, 0, 1)
		day = "tomorrow"
	case "today":
		// Keep today even if the time already passed; the caller asked for it.
	default:
		if !target.After(now) {
			target = target.AddDate(0, 0, 1)
			day = "tomorrow"
		}
	}
	return &Result{
		Schedule:       &models.CronSchedule{Kind: models.ScheduleAt, AtMs: target.UnixMilli()},
		Confidence:     0.85,
		Interpretation: fmt.Sprintf("once, %s at %02d:%02d", day, hour, minute),
	}
}

// clockFromMatch converts captured hour/minute/meridiem strings into a 24h
// clock. A false return means the phrase is not a valid time and the
// recognizer should fall through rather than fail the whole parse.
func clockFromMatch(hourStr, minuteStr, meridiem string) (hour, minute int, ok bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return 0, 0, false
	}
	if minuteStr != "" {
		minute, err = strconv.Atoi(minuteStr)
		if err != nil || minute > 59 {
			return 0, 0, false
		}
	}
	switch meridiem {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
