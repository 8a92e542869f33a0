package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Consulting Sessions API",
        "description": "Scheduling and enrollment engine for group consulting sessions",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Sessions", "description": "Session listings and caller enrollment"},
        {"name": "Admin Sessions", "description": "Operator schedule, capacity and roster management"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/v1/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List consulting sessions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "range", "in": "query", "type": "string", "enum": ["upcoming", "past", "live"], "default": "upcoming"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionListEnvelope"}},
                    "400": {"description": "Invalid range", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Get a consulting session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SessionView"}},
                    "404": {"description": "SESSION_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sessions/{id}/enroll": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Enroll the caller into a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/BookingResponse"}},
                    "201": {"description": "Seat taken", "schema": {"$ref": "#/definitions/BookingResponse"}},
                    "404": {"description": "SESSION_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "SESSION_FULL or SESSION_CANCELLED_OR_FINISHED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sessions"],
                "summary": "Cancel the caller's enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Seat released", "schema": {"$ref": "#/definitions/BookingResponse"}},
                    "404": {"description": "SESSION_NOT_FOUND", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "NOT_ENROLLED, SESSION_ALREADY_FINISHED or SESSION_CANCELLED_OR_FINISHED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/sessions": {
            "post": {
                "tags": ["Admin Sessions"],
                "summary": "Schedule a session",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/AdminSession"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/sessions/{id}": {
            "patch": {
                "tags": ["Admin Sessions"],
                "summary": "Update a session",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/AdminSession"}},
                    "409": {"description": "CAPACITY_BELOW_ENROLLMENT or SESSION_CANCELLED_OR_FINISHED", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Admin Sessions"],
                "summary": "Delete a session without enrollment history",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "SESSION_HAS_ENROLLMENTS", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/sessions/{id}/cancel": {
            "post": {
                "tags": ["Admin Sessions"],
                "summary": "Cancel a session",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/AdminSession"}},
                    "409": {"description": "SESSION_CANCELLED_OR_FINISHED when the session already finished", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/sessions/{id}/roster": {
            "get": {
                "tags": ["Admin Sessions"],
                "summary": "Session roster",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/sessions/{id}/roster/export": {
            "get": {
                "tags": ["Admin Sessions"],
                "summary": "Download the session roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Roster file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SessionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string", "example": "2026-03-10"},
                "time": {"type": "string", "example": "14:00"},
                "scheduledAt": {"type": "string", "format": "date-time"},
                "duration": {"type": "integer"},
                "participants": {"type": "integer"},
                "maxParticipants": {"type": "integer"},
                "status": {"type": "string", "enum": ["scheduled", "available", "full", "completed", "cancelled"]},
                "instructor": {"type": "string"},
                "platform": {"type": "string"},
                "meetingLink": {"type": "string", "description": "Present only when the caller is enrolled"},
                "isEnrolled": {"type": "boolean"},
                "isLive": {"type": "boolean"},
                "isJoinable": {"type": "boolean"},
                "isFinished": {"type": "boolean"}
            }
        },
        "SessionListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/SessionView"}},
                "meta": {"type": "object"}
            }
        },
        "BookingResponse": {
            "type": "object",
            "properties": {
                "sessionId": {"type": "string"},
                "enrollmentId": {"type": "string"},
                "status": {"type": "string"},
                "participants": {"type": "integer"},
                "maxParticipants": {"type": "integer"},
                "alreadyEnrolled": {"type": "boolean"},
                "enrolledAt": {"type": "string", "format": "date-time"},
                "cancelledAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateSessionRequest": {
            "type": "object",
            "required": ["title", "instructor", "scheduledAt", "maxParticipants"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "instructor": {"type": "string"},
                "scheduledAt": {"type": "string", "format": "date-time"},
                "durationMinutes": {"type": "integer", "minimum": 0},
                "maxParticipants": {"type": "integer", "minimum": 1},
                "status": {"type": "string", "enum": ["scheduled", "available"]},
                "platform": {"type": "string"},
                "meetingLink": {"type": "string", "format": "uri"}
            }
        },
        "AdminSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "instructor": {"type": "string"},
                "scheduledAt": {"type": "string", "format": "date-time"},
                "durationMinutes": {"type": "integer"},
                "maxParticipants": {"type": "integer"},
                "currentParticipants": {"type": "integer"},
                "status": {"type": "string"},
                "effectiveStatus": {"type": "string"},
                "platform": {"type": "string"},
                "meetingLink": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
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
