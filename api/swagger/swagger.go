package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Timetable API",
        "description": "Timetable validation, assembly and batch generation for the school scheduling subsystem",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Timetables", "description": "Slot validation, week commit and timetable reads"},
        {"name": "Generator", "description": "Batch weekly timetable generation"},
        {"name": "Exports", "description": "Asynchronous CSV/PDF exports"},
        {"name": "Rosters", "description": "Read-only class, subject and teacher rosters"},
        {"name": "Calendar", "description": "Weekly structure and holiday calendar"},
        {"name": "Teachers", "description": "Cross-class teacher schedule views"}
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
        "/api/v1/timetables/validate-slot": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Validate a single timetable slot",
                "responses": {
                    "200": {"description": "Validation result with accumulated errors and warnings"}
                }
            }
        },
        "/api/v1/timetables/validate-week": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Validate a full proposed week",
                "responses": {
                    "200": {"description": "Validation result"}
                }
            }
        },
        "/api/v1/timetables/commit": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Commit a validated week as the active timetable",
                "responses": {
                    "201": {"description": "Committed timetable"},
                    "422": {"description": "Validation failed; nothing persisted"}
                }
            }
        },
        "/api/v1/timetables/generate": {
            "post": {
                "tags": ["Generator"],
                "summary": "Generate weekly timetables for a batch of classes",
                "responses": {
                    "200": {"description": "Per-class results with unresolved slots"}
                }
            }
        },
        "/api/v1/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a timetable by ID",
                "responses": {
                    "200": {"description": "Timetable with slots"}
                }
            }
        },
        "/api/v1/exports/timetables/{id}": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a CSV or PDF export",
                "responses": {
                    "202": {"description": "Export job accepted"}
                }
            }
        },
        "/api/v1/exports/jobs/{jobId}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Poll an export job",
                "responses": {
                    "200": {"description": "Job status with download URL when finished"}
                }
            }
        },
        "/api/v1/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "responses": {
                    "200": {"description": "File stream"}
                }
            }
        },
        "/api/v1/classes": {
            "get": {
                "tags": ["Rosters"],
                "summary": "List classes",
                "responses": {
                    "200": {"description": "Paginated classes"}
                }
            }
        },
        "/api/v1/classes/{classId}/timetable": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get the active timetable for a class",
                "responses": {
                    "200": {"description": "Active timetable with slots"}
                }
            }
        },
        "/api/v1/subjects": {
            "get": {
                "tags": ["Rosters"],
                "summary": "List subjects",
                "responses": {
                    "200": {"description": "Paginated subjects"}
                }
            }
        },
        "/api/v1/teachers": {
            "get": {
                "tags": ["Rosters"],
                "summary": "List teachers",
                "responses": {
                    "200": {"description": "Paginated teachers"}
                }
            }
        },
        "/api/v1/teachers/{id}/schedule": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get a teacher's weekly schedule across classes",
                "responses": {
                    "200": {"description": "Committed slots"}
                }
            }
        },
        "/api/v1/teachers/{id}/availability": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Probe a teacher's availability at one (day, period)",
                "responses": {
                    "200": {"description": "Availability with conflicting class when busy"}
                }
            }
        },
        "/api/v1/teachers/{id}/conflicts": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List double-bookings for a teacher",
                "responses": {
                    "200": {"description": "Conflicting (day, period) groups"}
                }
            }
        },
        "/api/v1/calendar/structure": {
            "get": {
                "tags": ["Calendar"],
                "summary": "Get the weekly period grid and blocked windows",
                "responses": {
                    "200": {"description": "Periods and blocked windows"}
                }
            }
        },
        "/api/v1/calendar/holidays": {
            "get": {
                "tags": ["Calendar"],
                "summary": "List holidays in a date range",
                "responses": {
                    "200": {"description": "Holiday records"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "School Timetable API",
	Description:      "Timetable validation, assembly and batch generation for the school scheduling subsystem",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
