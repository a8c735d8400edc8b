package models

import "time"

// ExportRun records one invocation of the list export task.
type ExportRun struct {
	ID         string
	Format     string
	OutputDir  string
	TotalLists int
	Succeeded  int
	Failed     int
	CreatedAt  time.Time
}
