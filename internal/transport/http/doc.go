// Package http implements the HTTP request handlers of the data insight
// service. It is a thin layer between transport and business logic: handlers
// parse and validate requests, call the service layer, and translate service
// errors into RFC 7807 problem responses.
//
// Each handler follows the same pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Parse and validate the request
//	    // 2. Call the service layer
//	    // 3. Map sentinel errors to API errors with errors.Is
//	    // 4. Render the success response with go-chi/render
//	}
package http
