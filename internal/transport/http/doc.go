// Package http implements the HTTP handlers of the validation server.
// Handlers stay thin: they parse the request, call a service and render the
// result with go-chi/render.
//
// # Endpoints
//
//	POST /api/v1/validate   multipart upload, field "file", optional "sheet"
//	GET  /api/v1/catalog    metric catalog names
//	GET  /healthz           service health
//
// A validation that finds data-quality failures still answers 200; the
// report summary carries the failure count. Only input errors produce an
// error status.
//
// # Error Handling
//
// Errors are rendered as RFC 7807 Problem Details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/dataset/rejected",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "column \"asset\" not present in dataset",
//	    "instance": "/api/v1/validate",
//	    "trace_id": "5f0c..."
//	}
package http
