package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Class Routine API",
        "description": "Weekly class routine generation for academic years",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Routines", "description": "Routine generation, grids and exports"},
        {"name": "Preferences", "description": "Teacher slot preferences"}
    ],
    "paths": {
        "/routines/generate": {
            "post": {
                "tags": ["Routines"],
                "summary": "Generate the weekly routine of an academic year",
                "description": "Clears the year's routine and places every active course assignment. Partial routines still return 200; inspect skipped.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRoutineRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No active assignments or unresolved references", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/generate/async": {
            "post": {
                "tags": ["Routines"],
                "summary": "Queue a routine generation run",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateRoutineRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Run already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "429": {"description": "Queue full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/sessions/{id}": {
            "get": {
                "tags": ["Routines"],
                "summary": "Get one generation run with its report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/{year}": {
            "get": {
                "tags": ["Routines"],
                "summary": "Weekly routine grid",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "teacher_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/{year}/export": {
            "get": {
                "tags": ["Routines"],
                "summary": "Download the routine as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "teacher_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "404": {"description": "No routine for the year", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/routines/{year}/sessions": {
            "get": {
                "tags": ["Routines"],
                "summary": "List generation runs of an academic year",
                "parameters": [
                    {"name": "year", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}/preferences": {
            "get": {
                "tags": ["Preferences"],
                "summary": "List a teacher's slot preferences",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "academic_year", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preferences"],
                "summary": "Replace a teacher's slot preferences for a year",
                "description": "Slots left out of the payload fall back to LOW.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReplacePreferencesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateRoutineRequest": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"},
                "seed": {"type": "integer", "format": "int64"},
                "max_attempts": {"type": "integer", "minimum": 1, "maximum": 10},
                "daily_limit": {"type": "integer", "minimum": 1, "maximum": 9}
            },
            "required": ["academic_year"]
        },
        "PreferenceItem": {
            "type": "object",
            "properties": {
                "day": {"type": "string", "enum": ["Saturday", "Sunday", "Monday", "Tuesday", "Wednesday"]},
                "slot": {"type": "integer", "minimum": 1, "maximum": 9},
                "level": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW", "UNAVAILABLE"]}
            },
            "required": ["day", "slot", "level"]
        },
        "ReplacePreferencesRequest": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"},
                "preferences": {
                    "type": "array",
                    "maxItems": 45,
                    "items": {"$ref": "#/definitions/PreferenceItem"}
                }
            },
            "required": ["academic_year"]
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
