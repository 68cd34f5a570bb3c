package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Timetable drafts, constraint checking and teacher replacement.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Drafts",
            "description": "Draft lifecycle"
        },
        {
            "name": "Lessons",
            "description": "Lesson mutations and the live schedule"
        },
        {
            "name": "Replacements",
            "description": "Teacher absence remedies"
        },
        {
            "name": "Exports",
            "description": "csv, pdf, xlsx and ics downloads"
        },
        {
            "name": "Catalog",
            "description": "Teachers, classes, rooms and subjects"
        },
        {
            "name": "Ops",
            "description": "Service counters"
        }
    ],
    "paths": {
        "/drafts": {
            "get": {
                "tags": [
                    "Drafts"
                ],
                "summary": "List the caller's drafts",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Create an empty draft",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateDraftRequest"
                        }
                    }
                ]
            }
        },
        "/drafts/clone": {
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Create a draft holding a copy of the live schedule",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CloneDraftRequest"
                        }
                    }
                ]
            }
        },
        "/drafts/{id}": {
            "get": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Get a draft",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Delete a draft and its lessons",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ]
            }
        },
        "/drafts/{id}/activate": {
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Mark a draft active",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ]
            }
        },
        "/drafts/{id}/validate": {
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Validate every lesson pair of a draft",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ]
            }
        },
        "/drafts/{id}/commit": {
            "post": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Replace the live schedule with a valid draft",
                "description": "Admins only.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Revision conflict or busy draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Constraint violations",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RevisionRequest"
                        }
                    }
                ]
            }
        },
        "/drafts/{id}/availability": {
            "get": {
                "tags": [
                    "Drafts"
                ],
                "summary": "Check whether a teacher, class or room is free",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "teacher",
                            "class",
                            "room"
                        ]
                    },
                    {
                        "name": "entityId",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "day",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "start",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "end",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ]
            }
        },
        "/drafts/{id}/export": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Download a draft",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "xlsx",
                            "ics"
                        ]
                    },
                    {
                        "name": "from",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "weeks",
                        "in": "query",
                        "type": "integer"
                    }
                ],
                "produces": [
                    "application/octet-stream"
                ]
            }
        },
        "/drafts/{id}/lessons": {
            "get": {
                "tags": [
                    "Lessons"
                ],
                "summary": "List lessons of a draft",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Lessons"
                ],
                "summary": "Place a lesson in a draft",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Revision conflict or busy draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Constraint violations",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AddLessonRequest"
                        }
                    }
                ]
            },
            "put": {
                "tags": [
                    "Lessons"
                ],
                "summary": "Replace every lesson of a draft",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Revision conflict or busy draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Constraint violations",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReplaceLessonsRequest"
                        }
                    }
                ]
            }
        },
        "/drafts/{id}/lessons/{lessonId}": {
            "delete": {
                "tags": [
                    "Lessons"
                ],
                "summary": "Remove a lesson",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Revision conflict or busy draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Constraint violations",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "lessonId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Lesson ID"
                    },
                    {
                        "name": "revision",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    }
                ]
            }
        },
        "/drafts/{id}/lessons/{lessonId}/move": {
            "patch": {
                "tags": [
                    "Lessons"
                ],
                "summary": "Move a lesson",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Revision conflict or busy draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Constraint violations",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "lessonId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Lesson ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/MoveLessonRequest"
                        }
                    }
                ]
            }
        },
        "/drafts/{id}/lessons/{lessonId}/room": {
            "patch": {
                "tags": [
                    "Lessons"
                ],
                "summary": "Set or clear a lesson's room",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Revision conflict or busy draft",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Constraint violations",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "lessonId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Lesson ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReassignRoomRequest"
                        }
                    }
                ]
            }
        },
        "/timetable/live": {
            "get": {
                "tags": [
                    "Lessons"
                ],
                "summary": "List the committed schedule",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "teacherId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "classId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "day",
                        "in": "query",
                        "type": "string"
                    }
                ]
            }
        },
        "/timetable/live/export": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Download the committed schedule",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "xlsx",
                            "ics"
                        ]
                    }
                ],
                "produces": [
                    "application/octet-stream"
                ]
            }
        },
        "/replacements": {
            "post": {
                "tags": [
                    "Replacements"
                ],
                "summary": "Propose replacements for an absent teacher",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReplacementRequest"
                        }
                    }
                ]
            }
        },
        "/catalog": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Current catalog snapshot",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/catalog/refresh": {
            "post": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Drop the cached catalog",
                "description": "Cached draft sessions are dropped as well and rebuilt against the new catalog.",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Refreshed"
                    }
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Aggregated service counters",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "DraftConfig": {
            "type": "object",
            "properties": {
                "schoolDays": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "dayStart": {
                    "type": "string"
                },
                "dayEnd": {
                    "type": "string"
                },
                "sessionMinutes": {
                    "type": "integer"
                }
            }
        },
        "DraftRoster": {
            "type": "object",
            "properties": {
                "classIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "subjectIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "teacherIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "roomIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "gradeIds": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "CreateDraftRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "config": {
                    "$ref": "#/definitions/DraftConfig"
                },
                "roster": {
                    "$ref": "#/definitions/DraftRoster"
                }
            }
        },
        "CloneDraftRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "roster": {
                    "$ref": "#/definitions/DraftRoster"
                }
            }
        },
        "RevisionRequest": {
            "type": "object",
            "properties": {
                "revision": {
                    "type": "integer"
                }
            }
        },
        "LessonInput": {
            "type": "object",
            "required": [
                "day",
                "startTime",
                "endTime",
                "classId",
                "teacherId"
            ],
            "properties": {
                "day": {
                    "type": "string",
                    "example": "MONDAY"
                },
                "startTime": {
                    "type": "string",
                    "example": "08:00"
                },
                "endTime": {
                    "type": "string",
                    "example": "08:45"
                },
                "classId": {
                    "type": "string"
                },
                "subjectId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "roomId": {
                    "type": "string"
                }
            }
        },
        "AddLessonRequest": {
            "type": "object",
            "required": [
                "day",
                "startTime",
                "endTime",
                "classId",
                "teacherId"
            ],
            "properties": {
                "revision": {
                    "type": "integer"
                },
                "day": {
                    "type": "string",
                    "example": "MONDAY"
                },
                "startTime": {
                    "type": "string",
                    "example": "08:00"
                },
                "endTime": {
                    "type": "string",
                    "example": "08:45"
                },
                "classId": {
                    "type": "string"
                },
                "subjectId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "roomId": {
                    "type": "string"
                }
            }
        },
        "MoveLessonRequest": {
            "type": "object",
            "required": [
                "day",
                "startTime",
                "endTime"
            ],
            "properties": {
                "revision": {
                    "type": "integer"
                },
                "day": {
                    "type": "string"
                },
                "startTime": {
                    "type": "string"
                },
                "endTime": {
                    "type": "string"
                }
            }
        },
        "ReassignRoomRequest": {
            "type": "object",
            "properties": {
                "revision": {
                    "type": "integer"
                },
                "roomId": {
                    "type": "string"
                }
            }
        },
        "ReplaceLessonsRequest": {
            "type": "object",
            "properties": {
                "revision": {
                    "type": "integer"
                },
                "lessons": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/LessonInput"
                    }
                }
            }
        },
        "ReplacementRequest": {
            "type": "object",
            "required": [
                "absentTeacherId",
                "date"
            ],
            "properties": {
                "absentTeacherId": {
                    "type": "string"
                },
                "date": {
                    "type": "string",
                    "example": "2026-10-19"
                },
                "draftId": {
                    "type": "string"
                },
                "useAdvisor": {
                    "type": "boolean"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
