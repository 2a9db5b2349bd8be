package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
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
    <title>certdesk - Swagger</title>
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
  "info": { "title": "certdesk", "version": "v0.1.0" },
  "paths": {
    "/api/accounts/{accountID}/templates/{templateKey}/values": {
      "get": { "summary": "Stored values, version and field metadata", "responses": { "200": { "description": "values" }, "404": { "description": "unknown template" } } },
      "post": {
        "summary": "Merge and save edited values",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"values":{"type":"object","additionalProperties":{"type":"string"}},"document":{"type":"string","format":"byte"}}}}}},
        "responses": { "200": { "description": "field_count and version" }, "400": { "description": "unreadable document" }, "409": { "description": "concurrent edit" } }
      }
    },
    "/api/accounts/{accountID}/templates/{templateKey}/render": {
      "get": {
        "summary": "Render the filled certificate",
        "parameters": [{ "name": "holder_id", "in": "query", "schema": {"type":"string"} }],
        "responses": { "200": { "description": "application/pdf; X-Fill-Failures header" }, "404": { "description": "unknown template or holder" } }
      }
    },
    "/api/accounts/{accountID}/certificates": { "get": { "summary": "Generated certificates", "responses": { "200": { "description": "records" } } } },
    "/api/accounts/{accountID}/holders": {
      "get": { "summary": "List certificate holders", "responses": { "200": { "description": "holders" } } },
      "post": { "summary": "Create a certificate holder", "responses": { "201": { "description": "created" }, "422": { "description": "[{field, message}]" } } }
    },
    "/api/accounts/{accountID}/holders/{holderID}": {
      "get": { "summary": "Get a holder", "responses": { "200": { "description": "holder" }, "404": { "description": "not found" } } },
      "put": { "summary": "Update a holder", "responses": { "200": { "description": "holder" }, "422": { "description": "[{field, message}]" } } },
      "delete": { "summary": "Delete a holder", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/accounts/{accountID}/agency": {
      "get": { "summary": "Agency settings", "responses": { "200": { "description": "settings" }, "404": { "description": "not set" } } },
      "put": { "summary": "Replace agency settings", "responses": { "200": { "description": "settings" }, "422": { "description": "[{field, message}]" } } }
    },
    "/api/mappings/{templateKey}/{scope}": {
      "get": { "summary": "Effective role map", "parameters": [{ "name": "defaults_only", "in": "query", "schema": {"type":"boolean"} }], "responses": { "200": { "description": "roles" }, "400": { "description": "bad scope" } } },
      "put": { "summary": "Override the role map", "responses": { "200": { "description": "stored mapping" } } }
    },
    "/api/templates": { "get": { "summary": "Stored templates", "responses": { "200": { "description": "templates" } } } },
    "/api/templates/{templateKey}/refresh": { "post": { "summary": "Re-sync a template from its local file", "responses": { "200": { "description": "template, changed" }, "404": { "description": "no local file" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
