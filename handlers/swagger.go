package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>talqs API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "talqs", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Error": { "type": "object", "properties": { "error": { "type": "string" } } },
      "QAPair": { "type": "object", "properties": { "question": { "type": "string" }, "answer": { "type": "string" } } }
    }
  },
  "paths": {
    "/api/upload": {
      "post": {
        "summary": "Upload a .txt legal document and summarize it",
        "requestBody": { "content": { "multipart/form-data": { "schema": { "type": "object", "properties": { "file": { "type": "string", "format": "binary" } } } } } },
        "responses": {
          "200": { "description": "filename, fileSize (characters), summary and an optional warning" },
          "400": { "description": "No file part | No selected file | Only .txt files are supported | File is empty | File must be UTF-8 text | File too large" }
        }
      }
    },
    "/api/qa": {
      "post": {
        "summary": "Answer a question about the uploaded document or documentContent",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "question": { "type": "string" }, "documentContent": { "type": "string" } } } } } },
        "responses": {
          "200": { "description": "question, answer and an optional warning" },
          "400": { "description": "No data provided | No question provided | No document has been uploaded" }
        }
      }
    },
    "/api/questions": { "get": { "summary": "Default question battery of the upload flow", "responses": { "200": { "description": "{questions: [...]}" } } } },
    "/api/document": {
      "get": {
        "summary": "Metadata of the caller's uploaded document",
        "responses": { "200": { "description": "filename, fileSize, uploadedAt" }, "404": { "description": "No document has been uploaded" } }
      }
    },
    "/api/logout": { "post": { "summary": "Revoke the current bearer token", "responses": { "200": { "description": "logged out" } } } },
    "/summarize": {
      "post": {
        "summary": "Summarize text",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "text": { "type": "string" }, "max_length": { "type": "integer", "default": 150 }, "min_length": { "type": "integer", "default": 30 } } } } } },
        "responses": { "200": { "description": "summary and an optional warning" }, "400": { "description": "No text provided | Text cannot be empty" } }
      }
    },
    "/answer": {
      "post": {
        "summary": "Answer one question about a context",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "context": { "type": "string" }, "question": { "type": "string" } } } } } },
        "responses": { "200": { "description": "answer and an optional warning" }, "400": { "description": "blank context or question" } }
      }
    },
    "/answer_bulk": {
      "post": {
        "summary": "Answer the default question battery about a text",
        "requestBody": { "content": { "application/json": { "schema": { "type": "object", "properties": { "text": { "type": "string" } } } } } },
        "responses": { "200": { "description": "{qa_results: [{question, answer}]} and an optional warning" } }
      }
    },
    "/questions": { "get": { "summary": "Default question battery of the QA server", "responses": { "200": { "description": "{default_questions: [...]}" } } } },
    "/health": { "get": { "summary": "Liveness", "responses": { "200": { "description": "{status: healthy}" } } } },
    "/ready": { "get": { "summary": "Readiness", "responses": { "200": { "description": "ready" }, "503": { "description": "a dependency is unavailable" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition format" } } } }
  }
}`
