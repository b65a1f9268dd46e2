package models

// DiagnosticsReport describes whether the configured data source is reachable.
type DiagnosticsReport struct {
	ConfigLoaded      bool          `json:"configLoaded"`
	ConfigDetails     *ConfigDetail `json:"configDetails,omitempty"`
	Backend           string        `json:"backend"`
	SpreadsheetAccess bool          `json:"spreadsheetAccess"`
	SheetAccess       bool          `json:"sheetAccess"`
	RowCount          int           `json:"rowCount"`
	ColumnCount       int           `json:"columnCount"`
	Error             string        `json:"error,omitempty"`
}

// ConfigDetail echoes the data source coordinates in use.
type ConfigDetail struct {
	SpreadsheetID string `json:"spreadsheetId"`
	SheetName     string `json:"sheetName"`
	DataRange     string `json:"dataRange"`
}
