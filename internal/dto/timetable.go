package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/noah-isme/timetable-admin-api/internal/models"
)

// FlexString accepts a JSON string or number. Week numbers arrive as either.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// OptionalString is a batch field that remembers whether it was present in the payload.
// An explicit null counts as present and empty.
type OptionalString struct {
	Value string
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	var f FlexString
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Value, o.Set = string(f), true
	return nil
}

func (o OptionalString) ptr() *string {
	if !o.Set {
		return nil
	}
	s := o.Value
	return &s
}

// ModuleQuery selects one module in one teaching period.
type ModuleQuery struct {
	Module string `form:"module" validate:"required"`
	Period string `form:"period" validate:"required"`
}

// ExportQuery selects a module and the download format.
type ExportQuery struct {
	ModuleQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf xlsx ics"`
}

// ResolveDateQuery is the symbolic (period, week, day) triple to resolve.
type ResolveDateQuery struct {
	Period string `form:"period" validate:"required"`
	Week   string `form:"week" validate:"required"`
	Day    string `form:"day" validate:"required"`
}

// UpdateSessionRequest writes one cell of a session. A null value clears the cell.
type UpdateSessionRequest struct {
	ColumnIndex *int        `json:"column_index" validate:"required,min=0"`
	Value       interface{} `json:"value"`
}

// Cell converts the decoded JSON value into a store cell.
func (r UpdateSessionRequest) Cell() models.CellValue {
	return models.CellFromAny(r.Value)
}

// UpdateSessionWithDateRequest also carries the period and week used to recompute the
// date when the day column changes.
type UpdateSessionWithDateRequest struct {
	UpdateSessionRequest
	Period FlexString `json:"period"`
	Week   FlexString `json:"week"`
}

// BatchChange is one entry of a batch edit. Omitted fields are left untouched; null
// clears the cell. A blank uid matches no record and is skipped.
type BatchChange struct {
	UID    string         `json:"uid"`
	Staff  OptionalString `json:"staff"`
	Room   OptionalString `json:"room"`
	Day    OptionalString `json:"day"`
	Time   OptionalString `json:"time"`
	Period OptionalString `json:"period"`
	Week   OptionalString `json:"week"`
}

// BatchUpdateRequest is the payload of POST /sessions/batch.
type BatchUpdateRequest struct {
	Changes []BatchChange `json:"changes" validate:"required"`
}

// ToModel converts the payload into service changes.
func (r BatchUpdateRequest) ToModel() []models.SessionChange {
	changes := make([]models.SessionChange, 0, len(r.Changes))
	for _, c := range r.Changes {
		changes = append(changes, models.SessionChange{
			UID:    c.UID,
			Staff:  c.Staff.ptr(),
			Room:   c.Room.ptr(),
			Day:    c.Day.ptr(),
			Time:   c.Time.ptr(),
			Period: c.Period.ptr(),
			Week:   c.Week.ptr(),
		})
	}
	return changes
}
