package ticktick

// Task status values as used by the API.
const (
	TaskStatusNormal    = 0
	TaskStatusCompleted = 2
)

// User is the authenticated account as returned by /user.
type User struct {
	Name string `json:"name"`
}

// Project is a task list.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	SortOrder int64  `json:"sortOrder,omitempty"`
	Closed    bool   `json:"closed,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
	ViewMode  string `json:"viewMode,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// ProjectInput holds the writable project fields for create and update.
type ProjectInput struct {
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	SortOrder int64  `json:"sortOrder,omitempty"`
	ViewMode  string `json:"viewMode,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// Column is a kanban column within a project.
type Column struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sortOrder,omitempty"`
}

// ProjectData is the combined project, tasks and columns view returned by
// /project/{id}/data.
type ProjectData struct {
	Project Project  `json:"project"`
	Tasks   []Task   `json:"tasks"`
	Columns []Column `json:"columns"`
}

// ChecklistItem is a subtask within a task.
type ChecklistItem struct {
	ID            string `json:"id,omitempty"`
	Title         string `json:"title"`
	Status        int    `json:"status,omitempty"`
	CompletedTime string `json:"completedTime,omitempty"`
	IsAllDay      bool   `json:"isAllDay,omitempty"`
	SortOrder     int64  `json:"sortOrder,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	TimeZone      string `json:"timeZone,omitempty"`
}

// Task is a single task. Date fields use the API's
// "yyyy-MM-dd'T'HH:mm:ssZ" string format and are passed through untouched.
type Task struct {
	ID            string          `json:"id"`
	ProjectID     string          `json:"projectId"`
	Title         string          `json:"title"`
	Content       string          `json:"content,omitempty"`
	Desc          string          `json:"desc,omitempty"`
	IsAllDay      bool            `json:"isAllDay,omitempty"`
	StartDate     string          `json:"startDate,omitempty"`
	DueDate       string          `json:"dueDate,omitempty"`
	TimeZone      string          `json:"timeZone,omitempty"`
	Reminders     []string        `json:"reminders,omitempty"`
	RepeatFlag    string          `json:"repeatFlag,omitempty"`
	Priority      int             `json:"priority,omitempty"`
	Status        int             `json:"status,omitempty"`
	CompletedTime string          `json:"completedTime,omitempty"`
	SortOrder     int64           `json:"sortOrder,omitempty"`
	Items         []ChecklistItem `json:"items,omitempty"`
}

// TaskInput holds the writable task fields for create, update and batch
// creation. Title is required; ProjectID defaults to the inbox when empty.
type TaskInput struct {
	Title      string          `json:"title"`
	ProjectID  string          `json:"projectId,omitempty"`
	Content    string          `json:"content,omitempty"`
	Desc       string          `json:"desc,omitempty"`
	IsAllDay   bool            `json:"isAllDay,omitempty"`
	StartDate  string          `json:"startDate,omitempty"`
	DueDate    string          `json:"dueDate,omitempty"`
	TimeZone   string          `json:"timeZone,omitempty"`
	Reminders  []string        `json:"reminders,omitempty"`
	RepeatFlag string          `json:"repeatFlag,omitempty"`
	Priority   int             `json:"priority,omitempty"`
	SortOrder  int64           `json:"sortOrder,omitempty"`
	Items      []ChecklistItem `json:"items,omitempty"`
}

// BatchTaskResult maps created task IDs to their etags, as returned by
// /batch/task.
type BatchTaskResult struct {
	ID2Etag map[string]string `json:"id2etag,omitempty"`
}
