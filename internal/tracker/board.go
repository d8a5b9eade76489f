package tracker

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	perrors "github.com/PolarWolf314/pulse/internal/errors"
	"github.com/google/uuid"
)

func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}

// RandomPastelColor returns a light HSL color like the desktop app assigns to
// new projects.
func RandomPastelColor() string {
	return fmt.Sprintf("hsl(%d, 70%%, 85%%)", rand.IntN(360))
}

// Initials derives two uppercase letters from a name: the first letters of
// the first and last words, or the first two letters of a single word.
func Initials(name string) string {
	words := strings.Fields(name)
	switch len(words) {
	case 0:
		return ""
	case 1:
		r := []rune(words[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	default:
		first := []rune(words[0])
		last := []rune(words[len(words)-1])
		return strings.ToUpper(string(first[0]) + string(last[0]))
	}
}

// FindProject returns the project whose ID equals ref, or failing that the
// first one whose title matches ref case-insensitively.
func (b *Board) FindProject(ref string) (*Project, error) {
	for i := range b.Projects {
		if b.Projects[i].ID == ref {
			return &b.Projects[i], nil
		}
	}
	for i := range b.Projects {
		if strings.EqualFold(b.Projects[i].Title, ref) {
			return &b.Projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", perrors.ErrProjectNotFound, ref)
}

// FindTask looks a task up by ID or title within the project.
func (p *Project) FindTask(ref string) (*Task, error) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == ref {
			return &p.Tasks[i], nil
		}
	}
	for i := range p.Tasks {
		if strings.EqualFold(p.Tasks[i].Title, ref) {
			return &p.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", perrors.ErrTaskNotFound, ref)
}

// FindPerson looks a person up by ID or name.
func (b *Board) FindPerson(ref string) (*Person, error) {
	for i := range b.People {
		if b.People[i].ID == ref {
			return &b.People[i], nil
		}
	}
	for i := range b.People {
		if strings.EqualFold(b.People[i].Name, ref) {
			return &b.People[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", perrors.ErrPersonNotFound, ref)
}

// AddProject appends a new project. An empty color picks a random pastel.
func (b *Board) AddProject(title, color string) (*Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, perrors.ErrEmptyTitle
	}
	if color == "" {
		color = RandomPastelColor()
	}

	b.Projects = append(b.Projects, Project{
		ID:        newID("project"),
		Title:     title,
		Tasks:     []Task{},
		TaskColor: color,
	})
	return &b.Projects[len(b.Projects)-1], nil
}

// RemoveProject deletes a project and all of its tasks.
func (b *Board) RemoveProject(ref string) (Project, error) {
	p, err := b.FindProject(ref)
	if err != nil {
		return Project{}, err
	}
	removed := *p
	b.Projects = slices.DeleteFunc(b.Projects, func(x Project) bool { return x.ID == removed.ID })
	return removed, nil
}

// RenameProject changes a project's title.
func (b *Board) RenameProject(ref, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return perrors.ErrEmptyTitle
	}
	p, err := b.FindProject(ref)
	if err != nil {
		return err
	}
	p.Title = title
	return nil
}

// SetProjectColor changes the default task color. An empty color picks a
// random pastel.
func (b *Board) SetProjectColor(ref, color string) error {
	p, err := b.FindProject(ref)
	if err != nil {
		return err
	}
	if color == "" {
		color = RandomPastelColor()
	}
	p.TaskColor = color
	return nil
}

// AddTask appends a task to the project.
func (b *Board) AddTask(projectRef, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, perrors.ErrEmptyTitle
	}
	p, err := b.FindProject(projectRef)
	if err != nil {
		return nil, err
	}

	p.Tasks = append(p.Tasks, Task{
		ID:              newID("task"),
		Title:           title,
		Items:           []TaskItem{},
		AssignedPersons: []string{},
	})
	return &p.Tasks[len(p.Tasks)-1], nil
}

// RemoveTask deletes a task from its project.
func (b *Board) RemoveTask(projectRef, taskRef string) (Task, error) {
	p, err := b.FindProject(projectRef)
	if err != nil {
		return Task{}, err
	}
	t, err := p.FindTask(taskRef)
	if err != nil {
		return Task{}, err
	}
	removed := *t
	p.Tasks = slices.DeleteFunc(p.Tasks, func(x Task) bool { return x.ID == removed.ID })
	return removed, nil
}

// TaskUpdate holds optional changes to a task; nil fields are left alone.
type TaskUpdate struct {
	Title *string
	Color *string
}

// UpdateTask applies the non-nil fields of u.
func (b *Board) UpdateTask(projectRef, taskRef string, u TaskUpdate) error {
	t, err := b.task(projectRef, taskRef)
	if err != nil {
		return err
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return perrors.ErrEmptyTitle
		}
		t.Title = title
	}
	if u.Color != nil {
		t.Color = *u.Color
	}
	return nil
}

// AddItem appends a checklist item to a task.
func (b *Board) AddItem(projectRef, taskRef, text string) (*TaskItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, perrors.ErrEmptyTitle
	}
	t, err := b.task(projectRef, taskRef)
	if err != nil {
		return nil, err
	}
	t.Items = append(t.Items, TaskItem{ID: newID("item"), Text: text})
	return &t.Items[len(t.Items)-1], nil
}

// ToggleItem flips the completion state of a checklist item and returns the
// new state.
func (b *Board) ToggleItem(projectRef, taskRef, itemID string) (bool, error) {
	t, err := b.task(projectRef, taskRef)
	if err != nil {
		return false, err
	}
	for i := range t.Items {
		if t.Items[i].ID == itemID {
			t.Items[i].Completed = !t.Items[i].Completed
			return t.Items[i].Completed, nil
		}
	}
	return false, fmt.Errorf("%w: %s", perrors.ErrItemNotFound, itemID)
}

// CompleteTask marks every checklist item of the task as done.
func (b *Board) CompleteTask(projectRef, taskRef string) error {
	t, err := b.task(projectRef, taskRef)
	if err != nil {
		return err
	}
	for i := range t.Items {
		t.Items[i].Completed = true
	}
	return nil
}

// AssignPerson adds a person to a task. Assigning twice is a no-op.
func (b *Board) AssignPerson(projectRef, taskRef, personRef string) error {
	person, err := b.FindPerson(personRef)
	if err != nil {
		return err
	}
	t, err := b.task(projectRef, taskRef)
	if err != nil {
		return err
	}
	if !slices.Contains(t.AssignedPersons, person.ID) {
		t.AssignedPersons = append(t.AssignedPersons, person.ID)
	}
	return nil
}

// UnassignPerson removes a person from a task.
func (b *Board) UnassignPerson(projectRef, taskRef, personRef string) error {
	person, err := b.FindPerson(personRef)
	if err != nil {
		return err
	}
	t, err := b.task(projectRef, taskRef)
	if err != nil {
		return err
	}
	t.AssignedPersons = slices.DeleteFunc(t.AssignedPersons, func(id string) bool { return id == person.ID })
	return nil
}

// SetReminder stores when as the task's reminder. A zero time clears it.
func (b *Board) SetReminder(projectRef, taskRef string, when time.Time) error {
	t, err := b.task(projectRef, taskRef)
	if err != nil {
		return err
	}
	if when.IsZero() {
		t.Reminder = ""
		return nil
	}
	t.Reminder = when.UTC().Format(time.RFC3339)
	return nil
}

// AddPerson registers a new person with derived initials.
func (b *Board) AddPerson(name string) (*Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, perrors.ErrEmptyTitle
	}
	b.People = append(b.People, Person{
		ID:       newID("person"),
		Name:     name,
		Initials: Initials(name),
	})
	return &b.People[len(b.People)-1], nil
}

// RemovePerson deletes a person and unassigns them from every task.
func (b *Board) RemovePerson(ref string) (Person, error) {
	p, err := b.FindPerson(ref)
	if err != nil {
		return Person{}, err
	}
	removed := *p
	b.People = slices.DeleteFunc(b.People, func(x Person) bool { return x.ID == removed.ID })

	for i := range b.Projects {
		for j := range b.Projects[i].Tasks {
			t := &b.Projects[i].Tasks[j]
			t.AssignedPersons = slices.DeleteFunc(t.AssignedPersons, func(id string) bool { return id == removed.ID })
		}
	}
	return removed, nil
}

func (b *Board) task(projectRef, taskRef string) (*Task, error) {
	p, err := b.FindProject(projectRef)
	if err != nil {
		return nil, err
	}
	return p.FindTask(taskRef)
}
