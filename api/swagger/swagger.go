package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "HostelHub Mess API",
        "description": "Hostel mess ordering, issue tracking and dashboard reporting",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Registration, login and token lifecycle"},
        {"name": "Dashboard", "description": "Student and admin metric panels"},
        {"name": "Analytics", "description": "Per-meal order trend series"},
        {"name": "Menus", "description": "Weekly menu management"},
        {"name": "Orders", "description": "Meal ordering"},
        {"name": "Issues", "description": "Mess issue reporting"},
        {"name": "Notices", "description": "Notice board"},
        {"name": "Users", "description": "Profile and admin user management"},
        {"name": "Exports", "description": "CSV and PDF downloads"},
        {"name": "Images", "description": "Photo uploads and signed downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/verify-email": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Verify email address",
                "parameters": [
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Verified"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials or unverified email"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the presented refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/dashboard/student": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Personal dashboard metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/admin": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Mess-wide dashboard metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/orders": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Daily per-meal order counts for the caller",
                "parameters": [
                    {"name": "window", "in": "query", "type": "string", "enum": ["7d", "30d", "90d"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/orders/all": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Daily per-meal order counts across all students",
                "parameters": [
                    {"name": "window", "in": "query", "type": "string", "enum": ["7d", "30d", "90d"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/menus": {
            "get": {
                "tags": ["Menus"],
                "summary": "List menu items",
                "parameters": [
                    {"name": "day", "in": "query", "type": "string"},
                    {"name": "meal_time", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Menus"],
                "summary": "Add a menu item",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MenuRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/menus/{id}": {
            "get": {
                "tags": ["Menus"],
                "summary": "Get a menu item",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Menus"],
                "summary": "Update a menu item",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MenuRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Menus"],
                "summary": "Remove a menu item",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/orders": {
            "get": {
                "tags": ["Orders"],
                "summary": "List orders",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Orders"],
                "summary": "Place a meal order",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "tags": ["Orders"],
                "summary": "Get a single order",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the order's owner"}
                }
            },
            "delete": {
                "tags": ["Orders"],
                "summary": "Cancel an order",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/orders/{id}/status": {
            "patch": {
                "tags": ["Orders"],
                "summary": "Update fulfilment and payment state",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateOrderStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/issues": {
            "get": {
                "tags": ["Issues"],
                "summary": "List issues",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Issues"],
                "summary": "Report a mess issue",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/issues/{id}/status": {
            "patch": {
                "tags": ["Issues"],
                "summary": "Move an issue between handling states",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/notices": {
            "get": {
                "tags": ["Notices"],
                "summary": "List active notices",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Notices"],
                "summary": "Post a notice",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Current user's profile",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/exports/orders.csv": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the orders ledger as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/exports/menu.pdf": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the weekly menu as PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF file"}
                }
            }
        },
        "/images/{category}": {
            "post": {
                "tags": ["Images"],
                "summary": "Upload a menu or issue photo",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "category", "in": "path", "type": "string", "required": true},
                    {"name": "image", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["full_name", "email", "password", "room_no", "phone_no"],
            "properties": {
                "full_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "room_no": {"type": "string"},
                "phone_no": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "MenuRequest": {
            "type": "object",
            "required": ["description", "type", "meal_time", "day", "price"],
            "properties": {
                "description": {"type": "string"},
                "type": {"type": "string", "enum": ["Veg", "Non-veg", "Jain"]},
                "meal_time": {"type": "string", "enum": ["Breakfast", "Lunch", "Snacks", "Dinner"]},
                "day": {"type": "string"},
                "price": {"type": "string"},
                "image": {"type": "string"}
            }
        },
        "CreateOrderRequest": {
            "type": "object",
            "required": ["menu_id", "quantity", "payment_method"],
            "properties": {
                "menu_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "special_request": {"type": "string"},
                "payment_method": {"type": "string", "enum": ["Cash", "Card", "Online"]}
            }
        },
        "UpdateOrderStatusRequest": {
            "type": "object",
            "required": ["status", "payment_status"],
            "properties": {
                "status": {"type": "string", "enum": ["Pending", "Confirmed", "Delivered", "Cancelled"]},
                "payment_status": {"type": "string", "enum": ["Paid", "Unpaid", "Refunded"]}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
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
