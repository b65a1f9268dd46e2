package models

// ColumnLayout maps logical session fields to 0-based column offsets inside the
// timetable data range.
type ColumnLayout struct {
	Period   int `json:"period"`
	Week     int `json:"week"`
	Module   int `json:"module"`
	Topic    int `json:"topic"`
	Location int `json:"location"`
	Group    int `json:"group"`
	Hours    int `json:"hours"`
	Staff    int `json:"staff"`
	Room     int `json:"room"`
	Day      int `json:"day"`
	Time     int `json:"time"`
	Date     int `json:"date"`
	UID      int `json:"uid"`
}

// DefaultColumnLayout is the layout of the scheduling sheet (columns A..Q).
func DefaultColumnLayout() ColumnLayout {
	return ColumnLayout{
		Period:   0,
		Week:     1,
		Module:   4,
		Topic:    5,
		Location: 6,
		Group:    7,
		Hours:    8,
		Staff:    11,
		Room:     12,
		Day:      13,
		Time:     14,
		Date:     15,
		UID:      16,
	}
}
