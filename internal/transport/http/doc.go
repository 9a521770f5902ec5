// Package http implements the HTTP surface of the dashboard: the HTML
// page, the JSON API, report downloads and the reload websocket.
//
// Handlers stay thin. They parse the request, call the service layer and
// format the response:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Repository
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Error Handling
//
// Service errors are mapped to APIError values and rendered as RFC 7807
// problem details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/not-loaded",
//	    "title": "Service Unavailable",
//	    "status": 503,
//	    "detail": "Financial data is not available",
//	    "error_code": "DATA_NOT_LOADED",
//	    "instance": "/api/v1/dashboard"
//	}
//
// # Selection Parameters
//
// Every dashboard and export endpoint reads the same query parameters:
// unit, category, company (repeatable), companies_set, year and trend.
package http
