// Package board groups tasks into Kanban columns and applies drag-and-drop
// moves to that local state. A move that changes a task's column is pushed to
// the server afterwards without waiting and without rollback.
package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"taskmanager/internal/model"
)

// Column names one board lane.
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "inProgress"
	ColumnDone       Column = "done"
)

// Columns lists the lanes in display order. Cancelled tasks have no lane.
var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnDone}

var columnStatus = map[Column]model.TaskStatus{
	ColumnTodo:       model.StatusTodo,
	ColumnInProgress: model.StatusInProgress,
	ColumnDone:       model.StatusDone,
}

// Status returns the task status a lane stands for.
func (c Column) Status() (model.TaskStatus, bool) {
	s, ok := columnStatus[c]
	return s, ok
}

// ColumnFor returns the lane showing tasks in status s.
func ColumnFor(s model.TaskStatus) (Column, bool) {
	for c, status := range columnStatus {
		if status == s {
			return c, true
		}
	}
	return "", false
}

// ParseColumn validates a lane name.
func ParseColumn(name string) (Column, error) {
	c := Column(name)
	if _, ok := columnStatus[c]; !ok {
		return "", fmt.Errorf("unknown column %q (want todo, inProgress or done)", name)
	}
	return c, nil
}

// Location is a slot in a lane.
type Location struct {
	Column Column
	Index  int
}

// DropResult describes a finished drag. A nil Destination means the task was
// dropped outside every lane.
type DropResult struct {
	TaskID      uuid.UUID
	Source      Location
	Destination *Location
}

// Notifier receives the full task after its status changed locally.
type Notifier interface {
	UpdateTask(ctx context.Context, task model.Task) error
}

// Board holds the local column state. It is safe for concurrent use.
type Board struct {
	mu       sync.Mutex
	columns  map[Column][]model.Task
	notifier Notifier
	log      logrus.FieldLogger
	inflight sync.WaitGroup
}

// New groups tasks by status, keeping their relative order.
func New(tasks []model.Task, notifier Notifier, log logrus.FieldLogger) *Board {
	b := &Board{
		columns:  make(map[Column][]model.Task, len(Columns)),
		notifier: notifier,
		log:      log,
	}
	for _, c := range Columns {
		b.columns[c] = []model.Task{}
	}
	for _, t := range tasks {
		if c, ok := ColumnFor(t.Status); ok {
			b.columns[c] = append(b.columns[c], t)
		}
	}
	return b
}

// Column returns a copy of the lane's tasks.
func (b *Board) Column(c Column) []model.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Task(nil), b.columns[c]...)
}

// Find locates a task on the board.
func (b *Board) Find(id uuid.UUID) (Location, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range Columns {
		for i, t := range b.columns[c] {
			if t.ID == id {
				return Location{Column: c, Index: i}, true
			}
		}
	}
	return Location{}, false
}

// Move applies a drop to the local state and reports whether anything changed.
// Reordering within a lane never notifies. Moving across lanes sets the task's
// status to the destination lane's status and notifies in the background.
// A destination index past the end appends.
func (b *Board) Move(ctx context.Context, drop DropResult) (bool, error) {
	if drop.Destination == nil {
		return false, nil
	}
	dst := *drop.Destination
	if drop.Source == dst {
		return false, nil
	}
	dstStatus, ok := dst.Column.Status()
	if !ok {
		return false, fmt.Errorf("unknown column %q", dst.Column)
	}
	if dst.Index < 0 {
		return false, fmt.Errorf("negative destination index %d", dst.Index)
	}

	b.mu.Lock()
	src, ok := b.columns[drop.Source.Column]
	if !ok || drop.Source.Index < 0 || drop.Source.Index >= len(src) {
		b.mu.Unlock()
		return false, fmt.Errorf("no task at %s[%d]", drop.Source.Column, drop.Source.Index)
	}
	task := src[drop.Source.Index]
	if drop.TaskID != uuid.Nil && task.ID != drop.TaskID {
		b.mu.Unlock()
		return false, fmt.Errorf("task at %s[%d] is %s, not %s", drop.Source.Column, drop.Source.Index, task.ID, drop.TaskID)
	}

	b.columns[drop.Source.Column] = remove(src, drop.Source.Index)
	crossed := drop.Source.Column != dst.Column
	if crossed {
		task.Status = dstStatus
	}
	b.columns[dst.Column] = insert(b.columns[dst.Column], dst.Index, task)
	b.mu.Unlock()

	if crossed {
		b.notify(ctx, task)
	}
	return true, nil
}

func (b *Board) notify(ctx context.Context, task model.Task) {
	if b.notifier == nil {
		return
	}
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		if err := b.notifier.UpdateTask(context.WithoutCancel(ctx), task); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"task_id": task.ID,
				"status":  task.Status,
			}).Warn("status change not accepted by server; local board keeps it")
		}
	}()
}

// Wait blocks until every pending notification has finished.
func (b *Board) Wait() {
	b.inflight.Wait()
}

func remove(tasks []model.Task, i int) []model.Task {
	out := make([]model.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func insert(tasks []model.Task, i int, t model.Task) []model.Task {
	if i > len(tasks) {
		i = len(tasks)
	}
	out := make([]model.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, t)
	return append(out, tasks[i:]...)
}
