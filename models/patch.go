package models

// ProcessPatch is a partial update for a ProcessDescriptor. Nil fields are
// left untouched. ID, AgentID and CreatedAt are immutable and therefore have
// no patch field; the merge site is the only place mutation happens.
type ProcessPatch struct {
	Name                  *string                `json:"name,omitempty"`
	Description           *string                `json:"description,omitempty"`
	Status                *ProcessStatus         `json:"status,omitempty"`
	Schedule              *ProcessSchedule       `json:"schedule,omitempty"`
	Interface             *ProcessInterface      `json:"interface,omitempty"`
	CreatedFromSessionKey *string                `json:"createdFromSessionKey,omitempty"`
	ComposedFrom          []string               `json:"composedFrom,omitempty"`
	Inputs                []ProcessParam         `json:"inputs,omitempty"`
	Outputs               []ProcessParam         `json:"outputs,omitempty"`
	InputValues           map[string]interface{} `json:"inputValues,omitempty"`
	OutputValues          map[string]interface{} `json:"outputValues,omitempty"`
	Tags                  []string               `json:"tags,omitempty"`
	Meta                  map[string]interface{} `json:"meta,omitempty"`
}

// Apply merges the patch into the process field-by-field.
func (patch ProcessPatch) Apply(p *ProcessDescriptor) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Schedule != nil {
		p.Schedule = patch.Schedule
	}
	if patch.Interface != nil {
		p.Interface = patch.Interface
	}
	if patch.CreatedFromSessionKey != nil {
		p.CreatedFromSessionKey = *patch.CreatedFromSessionKey
	}
	if patch.ComposedFrom != nil {
		p.ComposedFrom = patch.ComposedFrom
	}
	if patch.Inputs != nil {
		p.Inputs = patch.Inputs
	}
	if patch.Outputs != nil {
		p.Outputs = patch.Outputs
	}
	if patch.InputValues != nil {
		p.InputValues = patch.InputValues
	}
	if patch.OutputValues != nil {
		p.OutputValues = patch.OutputValues
	}
	if patch.Tags != nil {
		p.Tags = patch.Tags
	}
	if patch.Meta != nil {
		p.Meta = patch.Meta
	}
}

// TaskPatch is a partial update for a ProcessTask. The task ID is immutable;
// Order is only rewritten through reorder, and DependsOn through the
// dedicated dependency path so referential checks cannot be bypassed.
type TaskPatch struct {
	Label       *string     `json:"label,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Prompt      *string     `json:"prompt,omitempty"`
	CronJobID   *string     `json:"cronJobId,omitempty"`
	NextRunAt   *int64      `json:"nextRunAt,omitempty"`
	Result      *string     `json:"result,omitempty"`
	LastError   *string     `json:"lastError,omitempty"`
}

// Apply merges the patch into the task field-by-field.
func (patch TaskPatch) Apply(t *ProcessTask) {
	if patch.Label != nil {
		t.Label = *patch.Label
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Prompt != nil {
		t.Prompt = *patch.Prompt
	}
	if patch.CronJobID != nil {
		t.CronJobID = *patch.CronJobID
	}
	if patch.NextRunAt != nil {
		t.NextRunAt = patch.NextRunAt
	}
	if patch.Result != nil {
		t.Result = *patch.Result
	}
	if patch.LastError != nil {
		t.LastError = *patch.LastError
	}
}
