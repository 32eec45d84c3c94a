package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ERP Approval API",
        "description": "Approval workflow, sequence ids and approval policies for approvable ERP documents",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Documents", "description": "Leaves, bookings, enquiries, quotes and offer letters"},
        {"name": "Approvals", "description": "Sign-off transitions and validity"},
        {"name": "Approval Policies", "description": "Per-organization sign-off stages"},
        {"name": "Notifications", "description": "Next approval level inbox"}
    ],
    "paths": {
        "/{kind}": {
            "get": {
                "tags": ["Documents"],
                "summary": "List approvable documents",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "approval", "in": "query", "type": "string", "description": "Comma separated approval statuses"},
                    {"name": "valid", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Create an approvable document",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDocumentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/{kind}/next-id": {
            "get": {
                "tags": ["Documents"],
                "summary": "Preview the next sequence id",
                "parameters": [{"$ref": "#/parameters/kind"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/{kind}/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get an approvable document",
                "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Documents"],
                "summary": "Edit a document, dropping prior sign-offs",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Stale version", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document",
                "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/{kind}/{id}/approval-sheet": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download the printable approval sheet",
                "produces": ["application/pdf"],
                "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "PDF", "schema": {"type": "file"}}}
            }
        },
        "/{kind}/{id}/activity": {
            "get": {
                "tags": ["Documents"],
                "summary": "List the activity trail of a document",
                "parameters": [{"$ref": "#/parameters/kind"}, {"$ref": "#/parameters/id"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/{kind}/updateapproval/{id}": {
            "put": {
                "tags": ["Approvals"],
                "summary": "Move a document to another approval status",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateApprovalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown status or stage not allowed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Concurrent modification", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/{kind}/changevalidation/{id}": {
            "put": {
                "tags": ["Approvals"],
                "summary": "Toggle a document's validity",
                "parameters": [
                    {"$ref": "#/parameters/kind"},
                    {"$ref": "#/parameters/id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangeValidityRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/approval-policies": {
            "get": {
                "tags": ["Approval Policies"],
                "summary": "List approval policies of the caller's organization",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/approval-policies/{feature}": {
            "put": {
                "tags": ["Approval Policies"],
                "summary": "Toggle the sign-off stages of one feature",
                "parameters": [
                    {"name": "feature", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateApprovalPolicyRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List approval notifications",
                "parameters": [
                    {"name": "unread", "in": "query", "type": "boolean"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/notifications/{id}/read": {
            "put": {
                "tags": ["Notifications"],
                "summary": "Mark a notification as read",
                "parameters": [{"$ref": "#/parameters/id"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or already read", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "parameters": {
        "kind": {
            "name": "kind",
            "in": "path",
            "required": true,
            "type": "string",
            "enum": ["leaves", "bookings", "enquiries", "quotes", "offers"]
        },
        "id": {"name": "id", "in": "path", "required": true, "type": "string"}
    },
    "definitions": {
        "ApprovalStatus": {
            "type": "string",
            "enum": ["none", "pending", "reviewed", "verified", "acknowledged", "correction", "rejected", "approved1", "approved2"]
        },
        "CreateDocumentRequest": {
            "type": "object",
            "required": ["details"],
            "properties": {
                "title": {"type": "string"},
                "companyId": {"type": "string"},
                "details": {"type": "object"},
                "sequenceId": {"type": "string"},
                "lastId": {"type": "integer"},
                "prefix": {"type": "string"}
            }
        },
        "UpdateDocumentRequest": {
            "type": "object",
            "required": ["details"],
            "properties": {
                "title": {"type": "string"},
                "details": {"type": "object"},
                "forceRevision": {"type": "boolean"},
                "version": {"type": "integer"}
            }
        },
        "UpdateApprovalRequest": {
            "type": "object",
            "required": ["approval"],
            "properties": {
                "approval": {"$ref": "#/definitions/ApprovalStatus"},
                "approvalComment": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "ChangeValidityRequest": {
            "type": "object",
            "required": ["valid"],
            "properties": {"valid": {"type": "boolean"}}
        },
        "UpdateApprovalPolicyRequest": {
            "type": "object",
            "properties": {
                "reviewed": {"type": "boolean"},
                "verified": {"type": "boolean"},
                "acknowledged": {"type": "boolean"},
                "approved1": {"type": "boolean"},
                "approved2": {"type": "boolean"}
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
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
