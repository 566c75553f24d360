// Package entity declares the console's business object types and the
// registry that binds each of them to a typed set of API operations.
package entity

import "time"

// Lead is a prospective customer tracked by the sales screens.
type Lead struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	CompanyName string   `json:"company_name,omitempty"`
	Source     string    `json:"source,omitempty"`
	Status     string    `json:"status,omitempty"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	FollowUpAt *time.Time `json:"follow_up_at,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

func (l Lead) EntityID() string { return l.ID }

// Contact is an address-book entry. Contacts flagged IsClient also appear
// in the client book; see ClientView.
type Contact struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CompanyName string  `json:"company_name,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsClient  bool      `json:"is_client"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (c Contact) EntityID() string { return c.ID }

// Project groups tasks under a client engagement.
type Project struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	ClientID    string     `json:"client_id,omitempty"`
	Status      string     `json:"status,omitempty"`
	StartDate   string     `json:"start_date,omitempty"`
	Deadline    string     `json:"deadline,omitempty"`
	Budget      float64    `json:"budget,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`
}

func (p Project) EntityID() string { return p.ID }

// Task is a unit of assignable work, optionally bound to a project.
type Task struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	ProjectID   string    `json:"project_id,omitempty"`
	AssignedTo  string    `json:"assigned_to,omitempty"`
	Status      string    `json:"status,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	DueDate     string    `json:"due_date,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

func (t Task) EntityID() string { return t.ID }

// Employee is a staff record used by the HR screens.
type Employee struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	EmployeeCode string    `json:"employee_code,omitempty"`
	Department   string    `json:"department,omitempty"`
	Designation  string    `json:"designation,omitempty"`
	JoiningDate  string    `json:"joining_date,omitempty"`
	Salary       float64   `json:"salary,omitempty"`
	PhotoURL     *string   `json:"photo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func (e Employee) EntityID() string { return e.ID }

// Record is the schemaless representation for entities without a dedicated
// struct. The name-dispatch layer works entirely in Records.
type Record map[string]any

func (r Record) EntityID() string {
	id, _ := r["id"].(string)
	return id
}
