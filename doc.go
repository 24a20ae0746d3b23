/*
Package dslhost is a small HTTP backend that hands a form-description script to a browser frontend and accepts the frontend's submissions.

The frontend fetches the script once on load, compiles it into an HTML form on its own side, and posts whatever the form produces back to the host. The host does not interpret either side of that exchange: the script is an opaque string and every submission receives the same acknowledgement.

# Endpoints

	GET  /get-initial-data   -> 200 {"script": "<dsl script>"}
	POST /<any path>         -> 200 "i_am_a_response"

A failure while building a submission response is reported as

	500 {"message": "An error occurred: <details>"}

Cross-origin requests are accepted from any origin.

# Usage

The handler can be embedded in any net/http server:

	package main

	import (
		"log"
		"net/http"

		httpAdapter "github.com/aretw0/dslhost/pkg/adapters/http"
		"github.com/aretw0/dslhost/pkg/domain"
	)

	func main() {
		handler, err := httpAdapter.NewHandler(domain.NewInitialData())
		if err != nil {
			log.Fatal(err)
		}
		log.Fatal(http.ListenAndServe("127.0.0.1:5000", handler))
	}

Or run the bundled CLI:

	dslhost serve --port 5000
*/
package dslhost
