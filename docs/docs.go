// Package docs registers the OpenAPI 2.0 description of the HTTP API served
// at /swagger, in the layout swag init writes from the handler annotations.
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
        "/health": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Database and Redis status",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "type": "object"
                        }
                    }
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Log in",
                "description": "Exchanges e-mail and password for an access and a refresh token.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.LoginResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/auth/refresh": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Refresh the access token",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "description": "Refresh token",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.RefreshRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.LoginResponse"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/dashboard": {
            "get": {
                "tags": [
                    "dashboard"
                ],
                "summary": "Counts and invoiced total",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.DashboardResponse"
                        }
                    }
                }
            }
        },
        "/v1/contacts": {
            "get": {
                "tags": [
                    "contacts"
                ],
                "summary": "List contacts, newest first",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Matches name, company, country or e-mail",
                        "name": "q",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.ContactResponse"
                            }
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "contacts"
                ],
                "summary": "Create a contact",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Contact",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ContactRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.ContactResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/apierror.ValidationError"
                        }
                    }
                }
            }
        },
        "/v1/contacts/{id}": {
            "get": {
                "tags": [
                    "contacts"
                ],
                "summary": "Get a contact",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ContactResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "contacts"
                ],
                "summary": "Update a contact",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Contact",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ContactRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ContactResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/apierror.ValidationError"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "contacts"
                ],
                "summary": "Delete a contact",
                "description": "Refused with 409 while invoices reference the contact.",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/contacts/{id}/prices": {
            "get": {
                "tags": [
                    "prices"
                ],
                "summary": "List customer prices of a contact",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.CustomerPriceResponse"
                            }
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/contacts/{id}/prices/{product_id}": {
            "put": {
                "tags": [
                    "prices"
                ],
                "summary": "Set a customer price",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Product ID",
                        "name": "product_id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Special price",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CustomerPriceRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.CustomerPriceResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/apierror.ValidationError"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "prices"
                ],
                "summary": "Remove a customer price",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Product ID",
                        "name": "product_id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/products": {
            "get": {
                "tags": [
                    "products"
                ],
                "summary": "List products",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.ProductResponse"
                            }
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "products"
                ],
                "summary": "Create a product",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Product",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ProductRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.ProductResponse"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/apierror.ValidationError"
                        }
                    }
                }
            }
        },
        "/v1/products/search": {
            "get": {
                "tags": [
                    "products"
                ],
                "summary": "Search products for invoice lines",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Name or short name",
                        "name": "q",
                        "in": "query"
                    },
                    {
                        "type": "boolean",
                        "description": "Only active products",
                        "name": "active_only",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.ProductSearchItem"
                            }
                        }
                    }
                }
            }
        },
        "/v1/products/{id}": {
            "get": {
                "tags": [
                    "products"
                ],
                "summary": "Get a product",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ProductResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "products"
                ],
                "summary": "Update a product",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Product",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.ProductRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.ProductResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/apierror.ValidationError"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "products"
                ],
                "summary": "Delete a product",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/products/{id}/price": {
            "get": {
                "tags": [
                    "products"
                ],
                "summary": "Resolve the unit price",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Contact whose customer price applies",
                        "name": "contact_id",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.PriceResponse"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/invoices": {
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "List invoices, newest first",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "$ref": "#/definitions/dto.InvoiceListItem"
                            }
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "invoices"
                ],
                "summary": "Create an invoice",
                "description": "Composes the submitted lines, assigns the next number for the issue date and stores header and items atomically.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "description": "Invoice header and lines",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.CreateInvoiceRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.InvoiceView"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    },
                    "422": {
                        "description": "Unprocessable Entity",
                        "schema": {
                            "$ref": "#/definitions/apierror.ValidationError"
                        }
                    }
                }
            }
        },
        "/v1/invoices/next-number": {
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "Preview the next invoice number",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Issue date (YYYY-MM-DD), today when omitted",
                        "name": "date",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.NextNumberResponse"
                        }
                    }
                }
            }
        },
        "/v1/invoices/{id}": {
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "Get an invoice",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.InvoiceView"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "invoices"
                ],
                "summary": "Delete an invoice",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/invoices/{id}/pdf": {
            "get": {
                "tags": [
                    "invoices"
                ],
                "summary": "Render the invoice as PDF",
                "produces": [
                    "application/pdf"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "1 to download as attachment",
                        "name": "download",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        },
        "/v1/invoices/{id}/email": {
            "post": {
                "tags": [
                    "invoices"
                ],
                "summary": "E-mail the invoice PDF",
                "description": "Queues delivery and answers 202; the worker sends it later.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Recipient",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.EmailInvoiceRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/apierror.APIError"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "apierror.APIError": {
            "type": "object",
            "properties": {
                "detail": {
                    "type": "string"
                },
                "request_id": {
                    "type": "string"
                }
            }
        },
        "apierror.ValidationError": {
            "type": "object",
            "properties": {
                "detail": {
                    "type": "string"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "dto.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password"
            ]
        },
        "dto.RefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {
                    "type": "string"
                }
            },
            "required": [
                "refresh_token"
            ]
        },
        "dto.UserResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "role": {
                    "type": "string"
                },
                "active": {
                    "type": "boolean"
                }
            }
        },
        "dto.LoginResponse": {
            "type": "object",
            "properties": {
                "access_token": {
                    "type": "string"
                },
                "refresh_token": {
                    "type": "string"
                },
                "token_type": {
                    "type": "string"
                },
                "expires_in": {
                    "type": "integer"
                },
                "user": {
                    "$ref": "#/definitions/dto.UserResponse"
                }
            }
        },
        "dto.DashboardResponse": {
            "type": "object",
            "properties": {
                "contacts": {
                    "type": "integer"
                },
                "active_products": {
                    "type": "integer"
                },
                "invoices": {
                    "type": "integer"
                },
                "invoice_total": {
                    "type": "string",
                    "example": "12.50"
                },
                "invoice_total_display": {
                    "type": "string"
                }
            }
        },
        "dto.ContactRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                },
                "country": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "whatsapp": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "next_followup_date": {
                    "type": "string"
                },
                "last_contact_date": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                }
            },
            "required": [
                "name"
            ]
        },
        "dto.ContactResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                },
                "country": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "whatsapp": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                },
                "next_followup_date": {
                    "type": "string"
                },
                "last_contact_date": {
                    "type": "string"
                },
                "notes": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "dto.ProductRequest": {
            "type": "object",
            "properties": {
                "short_name": {
                    "type": "string"
                },
                "full_name": {
                    "type": "string"
                },
                "specification": {
                    "type": "string"
                },
                "package": {
                    "type": "string"
                },
                "form": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "currency": {
                    "type": "string"
                },
                "active": {
                    "type": "boolean"
                }
            },
            "required": [
                "full_name"
            ]
        },
        "dto.ProductResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "short_name": {
                    "type": "string"
                },
                "full_name": {
                    "type": "string"
                },
                "specification": {
                    "type": "string"
                },
                "package": {
                    "type": "string"
                },
                "form": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "currency": {
                    "type": "string"
                },
                "active": {
                    "type": "boolean"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "dto.ProductSearchItem": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                },
                "short_name": {
                    "type": "string"
                },
                "full_name": {
                    "type": "string"
                },
                "specification": {
                    "type": "string"
                },
                "package": {
                    "type": "string"
                },
                "form": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "currency": {
                    "type": "string"
                }
            }
        },
        "dto.PriceResponse": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string"
                },
                "contact_id": {
                    "type": "string"
                },
                "unit_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "currency": {
                    "type": "string"
                },
                "source": {
                    "type": "string"
                }
            }
        },
        "dto.CustomerPriceRequest": {
            "type": "object",
            "properties": {
                "special_price": {
                    "type": "string",
                    "example": "12.50"
                }
            }
        },
        "dto.CustomerPriceResponse": {
            "type": "object",
            "properties": {
                "contact_id": {
                    "type": "string"
                },
                "product_id": {
                    "type": "string"
                },
                "product_name": {
                    "type": "string"
                },
                "special_price": {
                    "type": "string",
                    "example": "12.50"
                }
            }
        },
        "dto.AddressInput": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "country": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                }
            }
        },
        "dto.AddressView": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "company": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "city": {
                    "type": "string"
                },
                "country": {
                    "type": "string"
                },
                "phone": {
                    "type": "string"
                },
                "email": {
                    "type": "string"
                }
            }
        },
        "dto.InvoiceLineInput": {
            "type": "object",
            "properties": {
                "product_id": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "specification": {
                    "type": "string"
                },
                "package": {
                    "type": "string"
                },
                "form": {
                    "type": "string"
                },
                "quantity": {
                    "description": "number, numeric string or empty"
                },
                "unit_price": {
                    "description": "number, numeric string or empty"
                },
                "discount": {
                    "type": "boolean"
                }
            }
        },
        "dto.CreateInvoiceRequest": {
            "type": "object",
            "properties": {
                "contact_id": {
                    "type": "string"
                },
                "issue_date": {
                    "type": "string"
                },
                "required_delivery_date": {
                    "type": "string"
                },
                "shipping_date": {
                    "type": "string"
                },
                "delivery_mode": {
                    "type": "string"
                },
                "trade_terms": {
                    "type": "string"
                },
                "payment_terms": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "internal_shipping_fee": {
                    "description": "number, numeric string or empty"
                },
                "previous_balance_note": {
                    "type": "string"
                },
                "bill_to": {
                    "$ref": "#/definitions/dto.AddressInput"
                },
                "ship_to": {
                    "$ref": "#/definitions/dto.AddressInput"
                },
                "use_contact_as_ship_to": {
                    "type": "boolean"
                },
                "lines": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.InvoiceLineInput"
                    }
                }
            },
            "required": [
                "contact_id"
            ]
        },
        "dto.EmailInvoiceRequest": {
            "type": "object",
            "properties": {
                "to": {
                    "type": "string"
                }
            },
            "required": [
                "to"
            ]
        },
        "dto.InvoiceItemView": {
            "type": "object",
            "properties": {
                "line_no": {
                    "type": "integer"
                },
                "product_id": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "specification": {
                    "type": "string"
                },
                "package": {
                    "type": "string"
                },
                "form": {
                    "type": "string"
                },
                "quantity": {
                    "type": "string",
                    "example": "12.50"
                },
                "unit_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "amount": {
                    "type": "string",
                    "example": "12.50"
                },
                "quantity_display": {
                    "type": "string"
                },
                "unit_price_display": {
                    "type": "string"
                },
                "amount_display": {
                    "type": "string"
                }
            }
        },
        "dto.InvoiceView": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "invoice_no": {
                    "type": "string"
                },
                "contact_id": {
                    "type": "string"
                },
                "contact_name": {
                    "type": "string"
                },
                "issue_date": {
                    "type": "string"
                },
                "required_delivery_date": {
                    "type": "string"
                },
                "shipping_date": {
                    "type": "string"
                },
                "delivery_mode": {
                    "type": "string"
                },
                "trade_terms": {
                    "type": "string"
                },
                "payment_terms": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "previous_balance_note": {
                    "type": "string"
                },
                "bill_to": {
                    "$ref": "#/definitions/dto.AddressView"
                },
                "ship_to": {
                    "$ref": "#/definitions/dto.AddressView"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.InvoiceItemView"
                    }
                },
                "subtotal": {
                    "type": "string",
                    "example": "12.50"
                },
                "internal_shipping_fee": {
                    "type": "string",
                    "example": "12.50"
                },
                "total_amount": {
                    "type": "string",
                    "example": "12.50"
                },
                "subtotal_display": {
                    "type": "string"
                },
                "shipping_fee_display": {
                    "type": "string"
                },
                "total_display": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "dto.InvoiceListItem": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "invoice_no": {
                    "type": "string"
                },
                "contact_id": {
                    "type": "string"
                },
                "contact_name": {
                    "type": "string"
                },
                "issue_date": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "total_amount": {
                    "type": "string",
                    "example": "12.50"
                },
                "total_display": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string"
                }
            }
        },
        "dto.NextNumberResponse": {
            "type": "object",
            "properties": {
                "invoice_no": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ZAK CRM API",
	Description:      "Contacts, product catalog and proforma invoices.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
