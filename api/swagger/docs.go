// Package swagger registers the OpenAPI description served at /swagger.
package swagger

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
        "/api/auth/login": {
            "post": {"tags": ["auth"], "summary": "Log in", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Log out", "responses": {"200": {"description": "OK"}}}
        },
        "/api/auth/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current session", "responses": {"200": {"description": "OK"}}}
        },
        "/api/employees": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "List employees", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Create employee", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/employees/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Get employee", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Update employee", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Last active administrator"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["employees"], "summary": "Delete employee", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Last active administrator"}}}
        },
        "/api/schools": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["schools"], "summary": "List schools", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["schools"], "summary": "Create school", "responses": {"201": {"description": "Created"}}}
        },
        "/api/schools/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["schools"], "summary": "Get school", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["schools"], "summary": "Update school", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["schools"], "summary": "Delete school",
                "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}, {"in": "query", "name": "force", "type": "boolean"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "School has work entries"}}}
        },
        "/api/work-entries": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["work-entries"], "summary": "List work entries", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["work-entries"], "summary": "Submit work entries", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/work-entries/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["work-entries"], "summary": "Get work entry", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["work-entries"], "summary": "Update work entry", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["work-entries"], "summary": "Delete work entry", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/work-entries/{id}/edits": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["work-entries"], "summary": "Edit history of an entry", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/edit-history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["work-entries"], "summary": "All edit records", "responses": {"200": {"description": "OK"}}}
        },
        "/api/positions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["positions"], "summary": "List positions", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["positions"], "summary": "Create position", "responses": {"201": {"description": "Created"}}}
        },
        "/api/roles": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["roles"], "summary": "List roles", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["roles"], "summary": "Create role", "responses": {"201": {"description": "Created"}}}
        },
        "/api/history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["history"], "summary": "Get history",
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "action", "type": "string"},
                    {"in": "query", "name": "entity_type", "type": "string"},
                    {"in": "query", "name": "include_errors", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/history/actions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["history"], "summary": "History actions", "responses": {"200": {"description": "OK"}}}
        },
        "/api/hours/summary": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["hours"], "summary": "Hours summary",
                "parameters": [
                    {"in": "query", "name": "employee_id", "type": "string"},
                    {"in": "query", "name": "school_id", "type": "string"},
                    {"in": "query", "name": "period", "type": "string", "required": true, "enum": ["day", "week", "month", "year"]},
                    {"in": "query", "name": "date", "type": "string"},
                    {"in": "query", "name": "month", "type": "integer"},
                    {"in": "query", "name": "year", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/hours/overview": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["hours"], "summary": "Hours overview", "responses": {"200": {"description": "OK"}}}
        },
        "/api/hours/schools/{id}/monthly": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["hours"], "summary": "Monthly hours of a school", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/hours/schools/{id}/monthly/export": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["hours"], "summary": "Export monthly hours of a school", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/hours/schools/{id}/employees": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["hours"], "summary": "Employees of a school", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/hours/employees/{id}/schools": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["hours"], "summary": "Schools of an employee", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "service.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"password": {"type": "string"}, "username": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Work Hours API",
	Description:      "Employees, schools, logged work hours and the history of every change.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
