package tracker

// The JSON field names match the files written by the desktop application.

// TaskItem is one checklist entry of a task.
type TaskItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Person is someone tasks can be assigned to.
type Person struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// Task belongs to exactly one project.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Items           []TaskItem `json:"items"`
	AssignedPersons []string   `json:"assignedPersons"` // Person IDs.
	Reminder        string     `json:"reminder,omitempty"` // RFC 3339.
	Color           string     `json:"color,omitempty"`    // Overrides the project's task color.
}

// Project is a lane of tasks sharing a default color.
type Project struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Tasks     []Task `json:"tasks"`
	TaskColor string `json:"taskColor"`
}

// Board is everything the tracker persists.
type Board struct {
	Projects []Project
	People   []Person
}

// Normalize replaces nil slices with empty ones so records serialize as []
// rather than null, which the desktop application cannot read.
func (b *Board) Normalize() {
	if b.Projects == nil {
		b.Projects = []Project{}
	}
	if b.People == nil {
		b.People = []Person{}
	}
	for i := range b.Projects {
		p := &b.Projects[i]
		if p.Tasks == nil {
			p.Tasks = []Task{}
		}
		for j := range p.Tasks {
			t := &p.Tasks[j]
			if t.Items == nil {
				t.Items = []TaskItem{}
			}
			if t.AssignedPersons == nil {
				t.AssignedPersons = []string{}
			}
		}
	}
}

// Completed returns how many checklist items of the task are done.
func (t Task) Completed() int {
	n := 0
	for _, item := range t.Items {
		if item.Completed {
			n++
		}
	}
	return n
}

// Done reports whether the task has items and all of them are complete.
func (t Task) Done() bool {
	return len(t.Items) > 0 && t.Completed() == len(t.Items)
}
