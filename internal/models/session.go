package models

const (
	// IndividualLocation marks one-to-one sessions excluded from group views.
	IndividualLocation = "Individual (1-2-1)"
	// DefaultGroup labels sessions with a blank group.
	DefaultGroup = "No Group"
)

// SessionRecord is one normalized timetable row.
type SessionRecord struct {
	Row      int      `json:"row"`
	Period   string   `json:"period"`
	Week     string   `json:"week"`
	Module   string   `json:"module"`
	Topic    string   `json:"topic"`
	Location string   `json:"location"`
	Group    string   `json:"group"`
	Hours    string   `json:"hours"`
	Staff    string   `json:"staff"`
	Room     string   `json:"room"`
	Day      string   `json:"day"`
	Time     string   `json:"time"`
	Date     string   `json:"date"`
	UID      string   `json:"uid"`
	Cells    []string `json:"cells"`
}

// ModuleRef identifies a module taught in a teaching period.
type ModuleRef struct {
	Period string `json:"period"`
	Module string `json:"module"`
}

// SessionGroup is one cohort of a module, sessions in display order.
type SessionGroup struct {
	Group    string          `json:"group"`
	Sessions []SessionRecord `json:"sessions"`
}

// ModuleData is the filtered and grouped view of a module in a period.
type ModuleData struct {
	Module   string          `json:"module"`
	Period   string          `json:"period"`
	Sessions []SessionRecord `json:"sessions"`
	Groups   []string        `json:"groups"`
	Grouped  []SessionGroup  `json:"grouped"`
}

// SessionChange carries the fields of one batch edit. Nil fields are left untouched.
type SessionChange struct {
	UID    string  `json:"uid"`
	Staff  *string `json:"staff,omitempty"`
	Room   *string `json:"room,omitempty"`
	Day    *string `json:"day,omitempty"`
	Time   *string `json:"time,omitempty"`
	Period *string `json:"period,omitempty"`
	Week   *string `json:"week,omitempty"`
}

// BatchUpdateResult counts the records a batch actually touched.
type BatchUpdateResult struct {
	Updated int `json:"updated"`
	Total   int `json:"total"`
}
