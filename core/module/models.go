package module

import (
	"time"

	"github.com/KaushalKalal/TrainingManagement-Dashboard/core"
)

// State is the assignment state of a (module, trainee) pair.
type State int

const (
	StateUnassigned State = iota
	StateAssigned
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateAssigned:
		return "assigned"
	case StateCompleted:
		return "completed"
	default:
		return "unassigned"
	}
}

// Module is a unit of training content. CompletedBy is always a subset of AssignedTo.
type Module struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	AssignedTo  []string  `json:"assignedTo"`
	CompletedBy []string  `json:"completedBy"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC
}

// State returns the assignment state of traineeID on the module.
func (m Module) State(traineeID string) State {
	switch {
	case core.ContainsString(m.CompletedBy, traineeID):
		return StateCompleted
	case core.ContainsString(m.AssignedTo, traineeID):
		return StateAssigned
	default:
		return StateUnassigned
	}
}

// Assign adds traineeID to the assigned set. It reports whether the module changed.
func (m *Module) Assign(traineeID string) bool {
	if core.ContainsString(m.AssignedTo, traineeID) {
		return false
	}
	m.AssignedTo = append(m.AssignedTo, traineeID)
	return true
}

// Complete marks traineeID as having completed the module.
// Only assigned, not yet completed trainees move; anything else is a no-op.
func (m *Module) Complete(traineeID string) bool {
	if m.State(traineeID) != StateAssigned {
		return false
	}
	m.CompletedBy = append(m.CompletedBy, traineeID)
	return true
}

// Unassign removes traineeID from both the assigned and the completed sets.
func (m *Module) Unassign(traineeID string) bool {
	var changed bool
	m.AssignedTo, changed = remove(m.AssignedTo, traineeID)
	var completedChanged bool
	m.CompletedBy, completedChanged = remove(m.CompletedBy, traineeID)
	return changed || completedChanged
}

func remove(ids []string, id string) ([]string, bool) {
	res := make([]string, 0, len(ids))
	for _, i := range ids {
		if i != id {
			res = append(res, i)
		}
	}
	return res, len(res) != len(ids)
}

// Progress summarizes a trainee's assigned modules.
type Progress struct {
	Total     int      `json:"total"`
	Completed int      `json:"completed"`
	Pending   int      `json:"pending"`
	Modules   []Module `json:"modules"`
}

// NewProgress computes traineeID's Progress over the modules assigned to them.
func NewProgress(traineeID string, assigned []Module) Progress {
	prog := Progress{Total: len(assigned), Modules: assigned}
	if prog.Modules == nil {
		prog.Modules = []Module{}
	}
	for _, m := range assigned {
		if m.State(traineeID) == StateCompleted {
			prog.Completed++
		}
	}
	prog.Pending = prog.Total - prog.Completed
	return prog
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (nm *NewModule) Clean() {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
}

// Assignment identifies a (module, trainee) pair.
type Assignment struct {
	ModuleID  string `json:"moduleId" validate:"required"`
	TraineeID string `json:"traineeId" validate:"required"`
}

type QueryFilter struct {
	AssignedTo string
}
