// Package docs registers the storefront swagger document.
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
            "get": {"produces": ["application/json"], "summary": "Home", "responses": {"200": {"description": "OK"}}}
        },
        "/{category}": {
            "get": {
                "produces": ["application/json"],
                "summary": "List products",
                "parameters": [
                    {"type": "string", "description": "phones, tablets or accessories", "name": "category", "in": "path", "required": true},
                    {"type": "string", "description": "age, name or price", "name": "sort", "in": "query"},
                    {"type": "integer", "description": "1-based page", "name": "page", "in": "query"},
                    {"type": "integer", "description": "page size, 0 for all", "name": "perPage", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/{category}/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Product details",
                "parameters": [
                    {"type": "string", "name": "category", "in": "path", "required": true},
                    {"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/favourites": {
            "get": {"produces": ["application/json"], "summary": "List favourites", "responses": {"200": {"description": "OK"}}},
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Add favourite",
                "parameters": [{"description": "Product", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.productRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/favourites/{id}": {
            "delete": {
                "summary": "Remove favourite",
                "parameters": [{"type": "string", "description": "Product ID", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/cart": {
            "get": {"produces": ["application/json"], "summary": "Get cart", "responses": {"200": {"description": "OK"}}},
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Add to cart",
                "parameters": [{"description": "Product", "name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.productRequest"}}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/cart/{index}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Update cart line",
                "parameters": [
                    {"type": "integer", "description": "Line index", "name": "index", "in": "path", "required": true},
                    {"description": "Quantity", "name": "line", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.updateRequest"}}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "description": "The line is shown as loading and removed after a short delay.",
                "produces": ["application/json"],
                "summary": "Remove cart line",
                "parameters": [{"type": "integer", "description": "Line index", "name": "index", "in": "path", "required": true}],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/cart/{index}/removal": {
            "delete": {
                "summary": "Cancel cart line removal",
                "parameters": [{"type": "integer", "description": "Line index", "name": "index", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}
            }
        },
        "/cart/checkout": {
            "post": {"produces": ["application/json"], "summary": "Checkout", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/orders": {
            "get": {"produces": ["application/json"], "summary": "List orders", "responses": {"200": {"description": "OK"}}}
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get order",
                "parameters": [{"type": "string", "description": "Order ID", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "api.productRequest": {
            "type": "object",
            "properties": {"productId": {"type": "string"}}
        },
        "api.updateRequest": {
            "type": "object",
            "properties": {"productId": {"type": "string"}, "quantity": {"type": "integer"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8443",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront API",
	Description:      "Catalog, favourites and cart for the phone storefront",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
