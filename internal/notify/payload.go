package notify

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Kind tags the payload variant carried by a notification.
type Kind string

const (
	KindReminder      Kind = "reminder"
	KindDailySummary  Kind = "daily-summary"
	KindWeeklySummary Kind = "weekly-summary"
	KindStreak        Kind = "streak"
	KindOverdue       Kind = "overdue"
	KindDeadline      Kind = "deadline"
)

// Screens a tap handler can route to.
const (
	ScreenTask  = "task"
	ScreenTasks = "tasks"
	ScreenStats = "stats"
)

// Data map keys shared by every payload.
const (
	keyType   = "type"
	keyTaskID = "taskId"
	keyScreen = "screen"
)

// Payload is the closed set of typed notification payloads.
type Payload interface {
	Kind() Kind
	// TaskID is empty for payloads not tied to a single task.
	TaskID() string
	Screen() string
	encode(data map[string]any)
}

type ReminderPayload struct {
	Task string
}

func (p ReminderPayload) Kind() Kind     { return KindReminder }
func (p ReminderPayload) TaskID() string { return p.Task }
func (p ReminderPayload) Screen() string { return ScreenTask }
func (p ReminderPayload) encode(map[string]any) {}

type DailySummaryPayload struct {
	Pending    int
	Completed  int
	InProgress int
}

func (p DailySummaryPayload) Kind() Kind     { return KindDailySummary }
func (p DailySummaryPayload) TaskID() string { return "" }
func (p DailySummaryPayload) Screen() string { return ScreenStats }
func (p DailySummaryPayload) encode(data map[string]any) {
	data["pending"] = p.Pending
	data["completed"] = p.Completed
	data["inProgress"] = p.InProgress
}

type WeeklySummaryPayload struct {
	Completed   int
	Created     int
	TopCategory string
	TotalTime   time.Duration
}

func (p WeeklySummaryPayload) Kind() Kind     { return KindWeeklySummary }
func (p WeeklySummaryPayload) TaskID() string { return "" }
func (p WeeklySummaryPayload) Screen() string { return ScreenStats }
func (p WeeklySummaryPayload) encode(data map[string]any) {
	data["completed"] = p.Completed
	data["created"] = p.Created
	data["topCategory"] = p.TopCategory
	data["totalTimeSec"] = int64(p.TotalTime / time.Second)
}

type StreakPayload struct {
	Streak int
}

func (p StreakPayload) Kind() Kind     { return KindStreak }
func (p StreakPayload) TaskID() string { return "" }
func (p StreakPayload) Screen() string { return ScreenStats }
func (p StreakPayload) encode(data map[string]any) {
	data["streak"] = p.Streak
}

type OverduePayload struct {
	TaskIDs []string
}

func (p OverduePayload) Kind() Kind { return KindOverdue }

// TaskID returns the single overdue task, if there is exactly one.
func (p OverduePayload) TaskID() string {
	if len(p.TaskIDs) == 1 {
		return p.TaskIDs[0]
	}
	return ""
}

func (p OverduePayload) Screen() string {
	if len(p.TaskIDs) == 1 {
		return ScreenTask
	}
	return ScreenTasks
}

func (p OverduePayload) encode(data map[string]any) {
	data["taskIds"] = append([]string(nil), p.TaskIDs...)
	data["count"] = len(p.TaskIDs)
}

type DeadlinePayload struct {
	Task       string
	HoursUntil float64
}

func (p DeadlinePayload) Kind() Kind     { return KindDeadline }
func (p DeadlinePayload) TaskID() string { return p.Task }
func (p DeadlinePayload) Screen() string { return ScreenTask }
func (p DeadlinePayload) encode(data map[string]any) {
	data["hoursUntilDue"] = p.HoursUntil
}

// EncodePayload flattens p into the data map attached to a notification.
func EncodePayload(p Payload) map[string]any {
	data := map[string]any{
		keyType:   string(p.Kind()),
		keyScreen: p.Screen(),
	}
	if id := p.TaskID(); id != "" {
		data[keyTaskID] = id
	}
	p.encode(data)
	return data
}

// DecodePayload restores the typed payload from a data map. Numeric
// fields may arrive as any numeric type, as they do after a JSON round
// trip through the platform.
func DecodePayload(data map[string]any) (Payload, error) {
	kind := Kind(cast.ToString(data[keyType]))
	taskID := cast.ToString(data[keyTaskID])

	switch kind {
	case KindReminder:
		return ReminderPayload{Task: taskID}, nil
	case KindDailySummary:
		return DailySummaryPayload{
			Pending:    cast.ToInt(data["pending"]),
			Completed:  cast.ToInt(data["completed"]),
			InProgress: cast.ToInt(data["inProgress"]),
		}, nil
	case KindWeeklySummary:
		return WeeklySummaryPayload{
			Completed:   cast.ToInt(data["completed"]),
			Created:     cast.ToInt(data["created"]),
			TopCategory: cast.ToString(data["topCategory"]),
			TotalTime:   time.Duration(cast.ToInt64(data["totalTimeSec"])) * time.Second,
		}, nil
	case KindStreak:
		return StreakPayload{Streak: cast.ToInt(data["streak"])}, nil
	case KindOverdue:
		ids, err := cast.ToStringSliceE(data["taskIds"])
		if err != nil {
			return nil, fmt.Errorf("decoding overdue task ids: %w", err)
		}
		return OverduePayload{TaskIDs: ids}, nil
	case KindDeadline:
		return DeadlinePayload{
			Task:       taskID,
			HoursUntil: cast.ToFloat64(data["hoursUntilDue"]),
		}, nil
	default:
		return nil, fmt.Errorf("unknown payload type %q", kind)
	}
}
