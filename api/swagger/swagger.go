package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Timetable Admin API",
        "description": "Query and edit a teaching timetable held in a workbook or a Postgres cell store.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Timetable", "description": "Sessions, modules and periods"},
        {"name": "Directory", "description": "Staff and room choices"},
        {"name": "Calendar", "description": "Academic calendar and date resolution"},
        {"name": "Sessions", "description": "Edits keyed by session uid"},
        {"name": "Operations", "description": "Diagnostics and metrics"}
    ],
    "paths": {
        "/timetable": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List every timetable session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Configuration missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modules": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List (period, module) pairs",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/periods": {
            "get": {
                "tags": ["Timetable"],
                "summary": "List teaching periods",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/modules/sessions": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Sessions of a module in a period, grouped for display",
                "parameters": [
                    {"name": "module", "in": "query", "type": "string", "required": true},
                    {"name": "period", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/modules/export": {
            "get": {
                "tags": ["Timetable"],
                "summary": "Download a module's sessions",
                "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/calendar"],
                "parameters": [
                    {"name": "module", "in": "query", "type": "string", "required": true},
                    {"name": "period", "in": "query", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf", "xlsx", "ics"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff": {
            "get": {
                "tags": ["Directory"],
                "summary": "List staff names",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Directory"],
                "summary": "List room names",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/directory/cache": {
            "delete": {
                "tags": ["Directory"],
                "summary": "Drop cached staff and room lists",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Invalidated"}}
            }
        },
        "/academic-calendar": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List teaching periods and their start dates",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/academic-calendar/resolve": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Resolve the date of a (period, week, day) triple",
                "parameters": [
                    {"name": "period", "in": "query", "type": "string", "required": true},
                    {"name": "week", "in": "query", "type": "string", "required": true},
                    {"name": "day", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "INVALID_WEEK or INVALID_DAY", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "PERIOD_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{uid}": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Write one column of a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uid", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "RECORD_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{uid}/with-date": {
            "patch": {
                "tags": ["Sessions"],
                "summary": "Write one column of a session, recomputing the date on day edits",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "uid", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSessionWithDateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "RECORD_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/batch": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Apply several session edits",
                "description": "Unknown uids are skipped; the result counts the sessions actually updated.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/diagnostics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Inspect configuration and data source access",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Operations"],
                "summary": "Aggregated request, store and cache metrics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "UpdateSessionRequest": {
            "type": "object",
            "required": ["column_index"],
            "properties": {
                "column_index": {"type": "integer", "minimum": 0},
                "value": {"description": "string, number or null"}
            }
        },
        "UpdateSessionWithDateRequest": {
            "type": "object",
            "required": ["column_index"],
            "properties": {
                "column_index": {"type": "integer", "minimum": 0},
                "value": {"description": "string, number or null"},
                "period": {"type": "string"},
                "week": {"type": "string"}
            }
        },
        "BatchChange": {
            "type": "object",
            "description": "Omitted fields are untouched; null clears the cell. Blank or unknown uids are skipped.",
            "properties": {
                "uid": {"type": "string"},
                "staff": {"type": "string"},
                "room": {"type": "string"},
                "day": {"type": "string"},
                "time": {"type": "string"},
                "period": {"type": "string"},
                "week": {"type": "string"}
            }
        },
        "BatchUpdateRequest": {
            "type": "object",
            "required": ["changes"],
            "properties": {
                "changes": {"type": "array", "items": {"$ref": "#/definitions/BatchChange"}}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
