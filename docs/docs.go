// Package docs holds the OpenAPI document served at /swagger/*any.
// Regenerate with `swag init -g cmd/ministryd/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/home": {
            "get": {
                "description": "Returns everything the public page shows. Supports weak ETag via If-None-Match and may return 304.",
                "produces": ["application/json"],
                "tags": ["Site"],
                "summary": "Public page snapshot",
                "operationId": "homeJSON",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.HomePage"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for current content"}}},
                    "304": {"description": "Not Modified"},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/posts/{id}/like": {
            "post": {
                "description": "Registers a like for the current visitor. Repeat likes from the same visitor leave the counter unchanged.",
                "produces": ["application/json"],
                "tags": ["Likes"],
                "summary": "Like a scripture post",
                "operationId": "likePost",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Scripture post ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.LikeResponse"}},
                    "400": {"description": "Bad post id or no session", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Post not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Conflict, retry", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/resources": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List admin resources",
                "operationId": "listResources",
                "parameters": [
                    {"type": "string", "description": "Admin token", "name": "X-Admin-Token", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ResourcesResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/{resource}": {
            "get": {
                "description": "Filters by publishing flag, ranks by text relevance when q is given, otherwise sorts.",
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List records of a resource",
                "operationId": "listRecords",
                "parameters": [
                    {"type": "string", "description": "Admin token", "name": "X-Admin-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "boolean", "description": "Filter by is_active", "name": "active", "in": "query"},
                    {"type": "boolean", "description": "Filter by is_approved (testimonies)", "name": "approved", "in": "query"},
                    {"type": "string", "description": "Text search", "name": "q", "in": "query"},
                    {"type": "string", "description": "order, date, created or likes; prefix - for descending", "name": "sort", "in": "query"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListRecordsResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown resource", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Unknown fields are ignored; id, timestamps and like counters cannot be set. Supports idempotency via the Idempotency-Key header.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Create a record",
                "operationId": "createRecord",
                "parameters": [
                    {"type": "string", "description": "Admin token", "name": "X-Admin-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Idempotency key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"description": "Record fields", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Replayed result", "schema": {"type": "object"}},
                    "201": {"description": "Created", "schema": {"type": "object"}},
                    "400": {"description": "Invalid record", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown resource", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Contact info already exists", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/admin/{resource}/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Get a record",
                "operationId": "getRecord",
                "parameters": [
                    {"type": "string", "description": "Admin token", "name": "X-Admin-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "integer", "description": "Record ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Fields present in the body replace stored values; absent fields are kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Update a record",
                "operationId": "updateRecord",
                "parameters": [
                    {"type": "string", "description": "Admin token", "name": "X-Admin-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "integer", "description": "Record ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Invalid record", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Deleting a scripture post also removes its like records.",
                "tags": ["Admin"],
                "summary": "Delete a record",
                "operationId": "deleteRecord",
                "parameters": [
                    {"type": "string", "description": "Admin token", "name": "X-Admin-Token", "in": "header", "required": true},
                    {"type": "string", "description": "Resource name", "name": "resource", "in": "path", "required": true},
                    {"type": "integer", "description": "Record ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string", "example": "post not found"},
                "request_id": {"type": "string", "example": "5f1c2a9e-3b7d-4c1f-9a8e-2d6b4f0c1a23"}
            }
        },
        "handlers.LikeResponse": {
            "type": "object",
            "properties": {
                "already_liked": {"type": "boolean", "example": false},
                "liked": {"type": "boolean", "example": true},
                "likes": {"type": "integer", "example": 13},
                "post_id": {"type": "integer", "example": 7}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean"},
                "page": {"type": "integer", "example": 1},
                "page_size": {"type": "integer", "example": 20},
                "total": {"type": "integer", "example": 42},
                "total_pages": {"type": "integer", "example": 3}
            }
        },
        "handlers.ListRecordsResponse": {
            "type": "object",
            "properties": {
                "items": {},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.ResourcesResponse": {
            "type": "object",
            "properties": {
                "resources": {"type": "array", "items": {"type": "string"}}
            }
        },
        "services.HomePage": {
            "type": "object",
            "properties": {
                "site": {"type": "object"},
                "hero_slides": {"type": "array", "items": {"type": "object"}},
                "leaders": {"type": "array", "items": {"type": "object"}},
                "counselors": {"type": "array", "items": {"type": "object"}},
                "scripture_posts": {"type": "array", "items": {"type": "object"}},
                "announcements": {"type": "array", "items": {"type": "object"}},
                "testimonies": {"type": "array", "items": {"type": "object"}},
                "ministry_units": {"type": "array", "items": {"type": "object"}},
                "beliefs": {"type": "array", "items": {"type": "object"}},
                "contact_info": {"type": "object"},
                "generated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Ministry Site API",
	Description:      "Public page snapshot, scripture post likes, and the content admin API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
