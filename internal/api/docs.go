package api

import (
	_ "embed"
	"net/http"
)

// openAPISpec is the maintained-by-hand API document served to the Swagger
// UI. Update it alongside route or envelope changes.
//
//go:embed openapi.json
var openAPISpec []byte

// DocJSON serves the embedded OpenAPI document.
func DocJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(openAPISpec)
}
