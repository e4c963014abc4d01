package procedural

// ManifestSchema is the JSON Schema for procedural manifest validation
const ManifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "version", "main"],
  "properties": {
    "id": {
      "type": "string",
      "pattern": "^[a-z0-9-]+$",
      "description": "Unique procedural identifier"
    },
    "name": {
      "type": "string",
      "minLength": 1,
      "description": "Human-readable procedural name"
    },
    "version": {
      "type": "string",
      "pattern": "^\\d+\\.\\d+\\.\\d+$",
      "description": "Semver version"
    },
    "description": {
      "type": "string"
    },
    "main": {
      "type": "string",
      "minLength": 1,
      "description": "Executable path, or builtin:<name> for in-process procedurals"
    },
    "hostVersion": {
      "type": "string",
      "description": "Semver constraint on the host API version (e.g., ^1.0.0)"
    },
    "capabilities": {
      "type": "array",
      "items": {
        "type": "string",
        "enum": [
          "scene:create",
          "scene:delete",
          "scene:setattribute",
          "scene:connect",
          "scene:disconnect"
        ]
      }
    },
    "parameters": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {
            "type": "string",
            "minLength": 1
          },
          "type": {
            "type": "string",
            "enum": ["integer", "integer[]", "float", "double", "string", "point[]"]
          },
          "required": {
            "type": "boolean"
          },
          "description": {
            "type": "string"
          }
        }
      }
    }
  }
}`
