package model

// TaskType identifies the kind of duty a task represents
type TaskType string

const (
	TaskTypeBarDuty       TaskType = "bar-duty"
	TaskTypeCleanup       TaskType = "cleanup"
	TaskTypeSetup         TaskType = "setup"
	TaskTypeMedalCeremony TaskType = "medal-ceremony"
	TaskTypeMusic         TaskType = "music"
	TaskTypeAnnouncer     TaskType = "announcer"
	TaskTypeSignupDesk    TaskType = "signup-desk"
	TaskTypeScoring       TaskType = "scoring"
)

// unknownTypeCapacity is used for task types that are not part of the enumeration,
// e.g. a type written by a newer version of the tool
const unknownTypeCapacity = 99

// TaskTypeInfo holds the display data and default capacity of a task type
type TaskTypeInfo struct {
	Label           string
	Color           string
	DefaultCapacity int
}

// AllTaskTypes returns every known task type in display order
func AllTaskTypes() []TaskType {
	return []TaskType{
		TaskTypeBarDuty,
		TaskTypeCleanup,
		TaskTypeSetup,
		TaskTypeMedalCeremony,
		TaskTypeMusic,
		TaskTypeAnnouncer,
		TaskTypeSignupDesk,
		TaskTypeScoring,
	}
}

// Info returns the label, color and default capacity for the task type
func (t TaskType) Info() TaskTypeInfo {
	switch t {
	case TaskTypeBarDuty:
		return TaskTypeInfo{Label: "Bar duty", Color: "#2980b9", DefaultCapacity: 2}
	case TaskTypeCleanup:
		return TaskTypeInfo{Label: "Big cleanup", Color: "#8e44ad", DefaultCapacity: 20}
	case TaskTypeSetup:
		return TaskTypeInfo{Label: "Hall setup / teardown", Color: "#e67e22", DefaultCapacity: 10}
	case TaskTypeMedalCeremony:
		return TaskTypeInfo{Label: "Medal ceremony", Color: "#c0392b", DefaultCapacity: 5}
	case TaskTypeMusic:
		return TaskTypeInfo{Label: "Music", Color: "#16a085", DefaultCapacity: 2}
	case TaskTypeAnnouncer:
		return TaskTypeInfo{Label: "Announcer", Color: "#d35400", DefaultCapacity: 2}
	case TaskTypeSignupDesk:
		return TaskTypeInfo{Label: "Signup desk", Color: "#27ae60", DefaultCapacity: 5}
	case TaskTypeScoring:
		return TaskTypeInfo{Label: "Scores and diplomas", Color: "#2c3e50", DefaultCapacity: 5}
	}
	return TaskTypeInfo{Label: string(t), Color: "#666666", DefaultCapacity: unknownTypeCapacity}
}

// IsValid reports whether the task type is part of the enumeration
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeBarDuty, TaskTypeCleanup, TaskTypeSetup, TaskTypeMedalCeremony,
		TaskTypeMusic, TaskTypeAnnouncer, TaskTypeSignupDesk, TaskTypeScoring:
		return true
	}
	return false
}
