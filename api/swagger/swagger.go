package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MathOps Deadline API",
        "description": "Course milestones, deadline extensions and pace tracking for self-paced math courses",
        "version": "1.0.0"
    },
    "basePath": "/",
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
            "name": "Students",
            "description": "Pace and course status"
        },
        {
            "name": "Deadlines",
            "description": "Milestones, appeals and extensions"
        },
        {
            "name": "Calendar",
            "description": "Open days"
        },
        {
            "name": "Terms",
            "description": "Academic terms"
        },
        {
            "name": "Admin",
            "description": "Operator endpoints"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Database unreachable"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/terms": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "List terms",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "scope",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "enum": [
                            "past",
                            "active",
                            "future"
                        ]
                    },
                    {
                        "name": "academic_year",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/terms/active": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "Get active term",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "offset",
                        "in": "query",
                        "required": false,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/terms/{termId}": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "Get a term by key",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "termId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/calendar/open-days": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Open days of the active term",
                "produces": [
                    "application/json"
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/calendar/next-open-day": {
            "get": {
                "tags": [
                    "Calendar"
                ],
                "summary": "Nth open day after a date",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "date",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "name": "count",
                        "in": "query",
                        "required": false,
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students/{studentId}/pace": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Pace classification",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to the active term"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students/{studentId}/recompute": {
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Queue a recompute",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to the active term"
                    }
                ],
                "responses": {
                    "202": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students/{studentId}/courses/{course}/status": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "Course status",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "course",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to the active term"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students/{studentId}/milestones/{model}": {
            "get": {
                "tags": [
                    "Deadlines"
                ],
                "summary": "Resolved milestones",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "model",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "legacy",
                            "standard"
                        ]
                    },
                    {
                        "name": "track",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "pace",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to the active term"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students/{studentId}/appeals": {
            "get": {
                "tags": [
                    "Deadlines"
                ],
                "summary": "Appeal history",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "track",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "pace",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to the active term"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/students/{studentId}/extensions/{model}": {
            "get": {
                "tags": [
                    "Deadlines"
                ],
                "summary": "Extension days available",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "model",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "legacy",
                            "standard"
                        ]
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "accommodation",
                            "free"
                        ]
                    },
                    {
                        "name": "track",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "pace",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "index",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "unit",
                        "in": "query",
                        "required": true,
                        "type": "integer"
                    },
                    {
                        "name": "objective",
                        "in": "query",
                        "required": false,
                        "type": "integer"
                    },
                    {
                        "name": "ms_type",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    },
                    {
                        "name": "term_id",
                        "in": "query",
                        "type": "string",
                        "description": "Defaults to the active term"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "-1 when the extension is not offered, 0 when already used, otherwise the number of open days"
            },
            "post": {
                "tags": [
                    "Deadlines"
                ],
                "summary": "Apply an extension",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "studentId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "model",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "enum": [
                            "legacy",
                            "standard"
                        ]
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ExtensionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Partial grants are encoded as 100*requested+granted"
            }
        },
        "/api/v1/admin/metrics": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "Metrics snapshot",
                "produces": [
                    "application/json"
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/admin/cache/invalidate": {
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Drop cached milestones and open days",
                "produces": [
                    "application/json"
                ],
                "parameters": [],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Bad request",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Milestone configuration missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "ExtensionRequest": {
            "type": "object",
            "required": [
                "kind",
                "track",
                "pace",
                "index",
                "unit"
            ],
            "properties": {
                "term_id": {
                    "type": "string"
                },
                "kind": {
                    "type": "string",
                    "enum": [
                        "accommodation",
                        "free"
                    ]
                },
                "track": {
                    "type": "string"
                },
                "pace": {
                    "type": "integer"
                },
                "index": {
                    "type": "integer"
                },
                "unit": {
                    "type": "integer"
                },
                "objective": {
                    "type": "integer"
                },
                "ms_type": {
                    "type": "string",
                    "enum": [
                        "RE",
                        "FE"
                    ]
                }
            }
        },
        "ExtensionOutcome": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "integer"
                },
                "requested_days": {
                    "type": "integer"
                },
                "granted_days": {
                    "type": "integer"
                },
                "eligible": {
                    "type": "boolean"
                },
                "partial": {
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
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
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
