package models

import "time"

// Weekdays подписи дней недели для графика выполненных задач, начиная с воскресенья.
var Weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// TeamCount количество закрытых задач команды.
type TeamCount struct {
	Team      string `json:"team"`
	Completed int    `json:"completed"`
}

// Report представляет сводку по задачам для графиков.
type Report struct {
	GeneratedAt        time.Time   `json:"generatedAt"`
	TotalTasks         int         `json:"totalTasks"`
	CompletedByWeekday [7]int      `json:"completedByWeekday"`
	PendingHours       float64     `json:"pendingHours"`
	CompletedByTeam    []TeamCount `json:"completedByTeam"`
}
