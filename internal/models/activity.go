package models

// Action kinds recorded in the activity log. The set is closed: the logger
// rejects anything else instead of accepting free-form strings.
const (
	ActionUpload         = "UPLOAD"
	ActionEdit           = "EDIT"
	ActionDelete         = "DELETE"
	ActionUserEdit       = "USER_EDIT"
	ActionPasswordChange = "PASSWORD_CHANGE"
	ActionRoleChange     = "ROLE_CHANGE"
	ActionAdminEdit      = "ADMIN_EDIT"
)

// ActivityEntry is one append-only audit record
type ActivityEntry struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"` // RFC3339Nano, sortable
	Action    string      `json:"action"`
	Actor     string      `json:"actor"`   // username
	Subject   string      `json:"subject"` // masterlist number or target username
	Detail    string      `json:"detail"`
	Changes   []FieldDiff `json:"changes,omitempty"`
}

// FieldDiff is one changed field on an edit
type FieldDiff struct {
	Field   string `json:"field"`
	Display string `json:"display"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// ActivityFilter for querying the log
type ActivityFilter struct {
	Action string // "" or "all" means any kind
	Range  string // all, today, week, month
	Actor  string // substring match on actor username
	Limit  int    // cap on matched entries before pagination, 0 = no cap
}
