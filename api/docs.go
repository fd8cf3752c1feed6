// Package api registers the OpenAPI document served at /swagger/. The
// document is maintained by hand alongside the handler annotations in
// internal/auth/http.
package api

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
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "The created account"},
                    "400": {"description": "Validation failure with field list"},
                    "409": {"description": "Email already registered"},
                    "429": {"description": "Registration rate limit hit"}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Sign in with email and password",
                "responses": {
                    "200": {"description": "Session token and account"},
                    "400": {"description": "Invalid second-factor code"},
                    "401": {"description": "Invalid credentials"},
                    "403": {"description": "Account not active"},
                    "409": {"description": "Second factor required"},
                    "429": {"description": "Sign-in rate limit hit"}
                }
            }
        },
        "/api/account/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Get the authenticated account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "The account"},
                    "401": {"description": "No valid session"}
                }
            }
        },
        "/api/account/password": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Change the account password",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Password updated"},
                    "400": {"description": "New password violates the policy"},
                    "401": {"description": "No valid session or wrong current password"},
                    "409": {"description": "No password on file"}
                }
            }
        },
        "/api/account/2fa/setup": {
            "post": {
                "produces": ["application/json"],
                "tags": ["TwoFactor"],
                "summary": "Start two-factor enrollment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Enrollment material, shown once"},
                    "401": {"description": "No valid session"},
                    "409": {"description": "Two-factor already enabled"}
                }
            }
        },
        "/api/account/2fa/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["TwoFactor"],
                "summary": "Confirm two-factor enrollment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Two-factor enabled"},
                    "400": {"description": "Malformed or invalid code"},
                    "401": {"description": "No valid session"},
                    "409": {"description": "Not armed, or already enabled"},
                    "429": {"description": "Verification rate limit hit"}
                }
            }
        },
        "/api/account/2fa": {
            "delete": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["TwoFactor"],
                "summary": "Disable two-factor authentication",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Two-factor disabled"},
                    "401": {"description": "No valid session or wrong password"},
                    "409": {"description": "Not enabled, or no password on file"}
                }
            }
        },
        "/api/admin/accounts": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "List all accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "All accounts"},
                    "401": {"description": "No valid admin session"}
                }
            }
        },
        "/livez": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "status, uptime, version"}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "status, uptime, version, checks"},
                    "503": {"description": "service not ready"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "JWT session token. Format: \"Bearer {token}\"."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Accounts Service API",
	Description:      "Account registration, password sign-in and TOTP two-factor authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
