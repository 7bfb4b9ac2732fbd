// Package swagger holds the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/start.go -o docs/swagger
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
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    },
    "security": [{"ApiKeyAuth": []}],
    "paths": {
        "/catalog": {
            "get": {
                "description": "Returns the template, glob, fields, mode and cache state of the catalog. Never lists the backend.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Catalog Info",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.Info"}}
                }
            }
        },
        "/catalog/entries": {
            "get": {
                "description": "Returns the field values of every entry. Eager catalogs list the backend when the cache is empty or stale; on-demand catalogs return only entries resolved so far.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List Entries",
                "parameters": [
                    {"type": "boolean", "description": "Drop the cache before listing", "name": "refresh", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Entries", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Permission Denied", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/names": {
            "get": {
                "description": "Returns the canonical key of every entry, in listing order.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "List Entry Names",
                "responses": {
                    "200": {"description": "Names", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Permission Denied", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/entry": {
            "get": {
                "description": "Looks up the entry whose fields match the query parameters, e.g. ?city=bern&year=2024.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Get Entry",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/catalog.ResolvedEntry"}},
                    "400": {"description": "Invalid Key", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "403": {"description": "Permission Denied", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/path": {
            "get": {
                "description": "Substitutes the query parameters into the template. The path is not checked for existence.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Resolve Entry Path",
                "responses": {
                    "200": {"description": "Path", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Missing Field", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/search": {
            "get": {
                "description": "Returns entries whose key or path contains any of the whitespace separated words in q, ignoring case.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Search Entries",
                "parameters": [
                    {"type": "string", "description": "Search words", "name": "q", "in": "query", "required": true},
                    {"type": "integer", "description": "Maximum number of results", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Matches", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/snapshot": {
            "get": {
                "description": "Returns the rows mirrored into catalog_entries by the last full listing.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Get Snapshot",
                "responses": {
                    "200": {"description": "Snapshot", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Snapshot Disabled", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/drift": {
            "get": {
                "description": "Lists keys that were added, removed or changed since the snapshot was written. Pass all=true to include unchanged keys.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Snapshot Drift",
                "parameters": [
                    {"type": "boolean", "description": "Include unchanged keys", "name": "all", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/reconcile.Report"}},
                    "503": {"description": "Snapshot Disabled", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity": {
            "get": {
                "description": "Performs every available integrity check (Structure, Keys, Schema). Schema is skipped without a database.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Run All Integrity Checks",
                "responses": {
                    "200": {"description": "Combined Report", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/integrity/structure": {
            "get": {
                "description": "Verifies the backend is reachable and counts the paths the template parses.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Structure",
                "responses": {
                    "200": {"description": "Structure Report", "schema": {"$ref": "#/definitions/checks.StructureReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/keys": {
            "get": {
                "description": "Lists paths whose key is invalid or collides with another path. Only the first colliding path is addressable.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Entry Keys",
                "responses": {
                    "200": {"description": "Key Report", "schema": {"$ref": "#/definitions/checks.KeyReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/integrity/schema": {
            "get": {
                "description": "Checks that catalog_entries matches the snapshot model.",
                "produces": ["application/json"],
                "tags": ["integrity"],
                "summary": "Check Snapshot Schema",
                "responses": {
                    "200": {"description": "Schema Report", "schema": {"$ref": "#/definitions/checks.SchemaReport"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/catalog/reload": {
            "post": {
                "description": "Drops the cached table. Eager catalogs list the backend immediately.",
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Reload Catalog",
                "responses": {
                    "200": {"description": "Reloaded", "schema": {"type": "object", "additionalProperties": true}},
                    "403": {"description": "Permission Denied", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "catalog.Info": {
            "type": "object",
            "properties": {
                "built": {"type": "string"},
                "entries": {"type": "integer"},
                "fields": {"type": "array", "items": {"type": "string"}},
                "glob": {"type": "string"},
                "listable": {"type": "boolean"},
                "name": {"type": "string"},
                "recursive": {"type": "boolean"},
                "state": {"type": "string"},
                "template": {"type": "string"},
                "ttl_seconds": {"type": "number"},
                "url": {"type": "string"}
            }
        },
        "catalog.ResolvedEntry": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "path": {"type": "string"},
                "url": {"type": "string"},
                "values": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "checks.Collision": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "paths": {"type": "array", "items": {"type": "string"}}
            }
        },
        "checks.KeyReport": {
            "type": "object",
            "properties": {
                "collisions": {"type": "array", "items": {"$ref": "#/definitions/checks.Collision"}},
                "entries": {"type": "integer"},
                "invalid": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string"}
            }
        },
        "checks.SchemaReport": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"type": "string"}},
                "matched": {"type": "boolean"},
                "missing_columns": {"type": "array", "items": {"type": "string"}},
                "table": {"type": "string"},
                "type_mismatches": {"type": "array", "items": {"type": "string"}}
            }
        },
        "checks.StructureReport": {
            "type": "object",
            "properties": {
                "glob": {"type": "string"},
                "listed": {"type": "integer"},
                "matched": {"type": "integer"},
                "status": {"type": "string"},
                "unparsed": {"type": "array", "items": {"type": "string"}}
            }
        },
        "reconcile.Report": {
            "type": "object",
            "properties": {
                "results": {"type": "array", "items": {"$ref": "#/definitions/reconcile.Result"}},
                "summary": {"$ref": "#/definitions/reconcile.Summary"}
            }
        },
        "reconcile.Result": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "live_present": {"type": "boolean"},
                "mismatch": {"type": "array", "items": {"type": "string"}},
                "snapshot_present": {"type": "boolean"}
            }
        },
        "reconcile.Summary": {
            "type": "object",
            "properties": {
                "added": {"type": "integer"},
                "changed": {"type": "integer"},
                "removed": {"type": "integer"},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pattern Catalog API",
	Description:      "Exposes templated storage paths as a catalog of addressable entries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
