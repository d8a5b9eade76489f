// Package tracker holds the task tracker's data model (projects, tasks,
// checklist items and people) and persists it through a Backend.
//
// Records are stored under the names the desktop application uses, so a data
// directory can be shared between the two.
package tracker
