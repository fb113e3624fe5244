// Package docs registers the swagger spec of the modelreg HTTP API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "summary": "List model files in the models directory",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            }
        },
        "/handles": {
            "get": {
                "produces": ["application/json"],
                "summary": "List loaded handles",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HandlesResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Load a model under a handle id",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.LoadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.HandleStatus"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Already loaded", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Engine failed to load the model", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Engine not compiled in", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/handles/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Describe a handle",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HandleStatus"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "summary": "Unload a handle",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/handles/{id}/params": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Update context parameters",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ParamsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HandleStatus"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/handles/{id}/decode": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson"],
                "summary": "Greedy decode from a prompt, streamed as NDJSON",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.DecodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "token lines then a done line", "schema": {"$ref": "#/definitions/types.DecodeDone"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "KV cache too small", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Registry status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.Model": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "tinyllama-1.1b-chat.Q4_K_M.gguf"},
                "name": {"type": "string"},
                "path": {"type": "string"},
                "quant": {"type": "string", "example": "Q4_K_M"},
                "family": {"type": "string"}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {"models": {"type": "array", "items": {"$ref": "#/definitions/types.Model"}}}
        },
        "types.LoadParams": {
            "type": "object",
            "properties": {
                "gpu_layers": {"type": "integer"},
                "split_mode": {"type": "string", "enum": ["none", "layer", "row"]},
                "main_gpu": {"type": "integer"},
                "vocab_only": {"type": "boolean"},
                "use_mmap": {"type": "boolean"},
                "use_mlock": {"type": "boolean"}
            }
        },
        "types.ContextParams": {
            "type": "object",
            "properties": {
                "seed": {"type": "integer", "example": 4294967295},
                "ctx_size": {"type": "integer", "example": 2048},
                "batch_size": {"type": "integer", "example": 512},
                "threads": {"type": "integer", "example": 4},
                "threads_batch": {"type": "integer", "example": 4}
            }
        },
        "types.HandleStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "path": {"type": "string"},
                "load": {"$ref": "#/definitions/types.LoadParams"},
                "context": {"$ref": "#/definitions/types.ContextParams"},
                "loaded_at_unix": {"type": "integer"}
            }
        },
        "types.HandlesResponse": {
            "type": "object",
            "properties": {"handles": {"type": "array", "items": {"$ref": "#/definitions/types.HandleStatus"}}}
        },
        "types.LoadRequest": {
            "type": "object",
            "required": ["id"],
            "properties": {
                "id": {"type": "string", "example": "tiny"},
                "path": {"type": "string"},
                "model": {"type": "string"},
                "gpu_layers": {"type": "integer"},
                "split_mode": {"type": "string"},
                "main_gpu": {"type": "integer"},
                "vocab_only": {"type": "boolean"},
                "use_mmap": {"type": "boolean"},
                "use_mlock": {"type": "boolean"}
            }
        },
        "types.ParamsRequest": {
            "type": "object",
            "properties": {
                "seed": {"type": "integer"},
                "ctx_size": {"type": "integer"},
                "batch_size": {"type": "integer"},
                "threads": {"type": "integer"},
                "threads_batch": {"type": "integer"}
            }
        },
        "types.DecodeRequest": {
            "type": "object",
            "required": ["prompt"],
            "properties": {
                "prompt": {"type": "string", "example": "Hello my name is"},
                "max_len": {"type": "integer", "example": 32}
            }
        },
        "types.DecodeDone": {
            "type": "object",
            "properties": {
                "done": {"type": "boolean"},
                "content": {"type": "string"},
                "prompt_tokens": {"type": "integer"},
                "completion_tokens": {"type": "integer"},
                "stop_reason": {"type": "string", "enum": ["eos", "length"]},
                "tokens_per_second": {"type": "number"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "handles": {"type": "array", "items": {"$ref": "#/definitions/types.HandleStatus"}},
                "backend": {"type": "string"},
                "backends": {"type": "array", "items": {"type": "string"}},
                "state": {"type": "string"},
                "last_error": {"type": "string"},
                "loads_total": {"type": "integer"},
                "unloads_total": {"type": "integer"},
                "decodes_total": {"type": "integer"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "modelreg API",
	Description:      "HTTP API for loading llama.cpp models under named handles, tuning their context parameters and running greedy decodes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
