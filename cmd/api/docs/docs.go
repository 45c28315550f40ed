// Package docs holds the OpenAPI document served at /docs. Keep it in sync
// with the handler annotations (swag init -g cmd/api/main.go -o cmd/api/docs).
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Service banner",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RootResponse"}}
                }
            }
        },
        "/api/info": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Endpoint catalogue",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIInfoResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Always 200 while the process is up; dependency state is reported in the body.",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/generate_quiz": {
            "post": {
                "description": "Scrapes the article, asks the language model for a quiz and stores the result. Every call creates a new record.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Generate a quiz from a Wikipedia article",
                "parameters": [
                    {
                        "description": "Article URL",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.GenerateQuizRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QuizRecordResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/history": {
            "get": {
                "description": "Returns stored quizzes newest first.",
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "List generated quizzes",
                "parameters": [
                    {"minimum": 0, "type": "integer", "default": 0, "description": "Records to skip", "name": "skip", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 100, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.HistoryItem"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/quiz/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Get a stored quiz",
                "parameters": [
                    {"type": "integer", "description": "Quiz ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.QuizRecordResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIInfoResponse": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "endpoints": {"type": "array", "items": {"$ref": "#/definitions/dto.EndpointInfo"}},
                "name": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "dto.EndpointInfo": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "method": {"type": "string"},
                "path": {"type": "string"}
            }
        },
        "dto.GenerateQuizRequest": {
            "description": "Wikipedia article to build a quiz from",
            "type": "object",
            "required": ["url"],
            "properties": {
                "url": {"type": "string", "example": "https://en.wikipedia.org/wiki/Alan_Turing"}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "cache_connected": {"type": "boolean"},
                "database_connected": {"type": "boolean"},
                "status": {"type": "string", "example": "healthy"},
                "timestamp": {"type": "string"}
            }
        },
        "dto.HistoryItem": {
            "type": "object",
            "properties": {
                "date_generated": {"type": "string"},
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "dto.KeyEntitiesResponse": {
            "type": "object",
            "properties": {
                "locations": {"type": "array", "items": {"type": "string"}},
                "organizations": {"type": "array", "items": {"type": "string"}},
                "people": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.QuestionResponse": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"},
                "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
                "explanation": {"type": "string"},
                "options": {"type": "array", "items": {"type": "string"}},
                "question": {"type": "string"}
            }
        },
        "dto.QuizRecordResponse": {
            "description": "Generated quiz with article metadata",
            "type": "object",
            "properties": {
                "date_generated": {"type": "string"},
                "id": {"type": "integer"},
                "key_entities": {"$ref": "#/definitions/dto.KeyEntitiesResponse"},
                "quiz": {"type": "array", "items": {"$ref": "#/definitions/dto.QuestionResponse"}},
                "related_topics": {"type": "array", "items": {"type": "string"}},
                "scraped_content": {"type": "string"},
                "sections": {"type": "array", "items": {"type": "string"}},
                "summary": {"type": "string"},
                "title": {"type": "string"},
                "url": {"type": "string"}
            }
        },
        "dto.RootResponse": {
            "type": "object",
            "properties": {
                "docs": {"type": "string"},
                "health": {"type": "string"},
                "message": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "INVALID_URL"},
                "details": {"type": "object", "additionalProperties": true},
                "message": {"type": "string"},
                "status": {"type": "integer", "example": 400}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Wikipedia Quiz Generator API",
	Description:      "Generates multiple-choice quizzes from Wikipedia articles and keeps a history of them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
