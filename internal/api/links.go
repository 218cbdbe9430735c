package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/humastar"
)

// links maps operation paths to their RFC 8288 Link header values.
// Enables restish hypermedia navigation via `restish links <url>`.
var links = map[string][]string{
	"/health": {
		`</api/v1/info>; rel="info"`,
		`</api/v1/maps>; rel="maps"`,
		`</api/v1/sources>; rel="sources"`,
		`</api/v1/behaviors>; rel="behaviors"`,
		`</openapi.json>; rel="service-desc"`,
	},
	"/api/v1/info": {
		`</health>; rel="health"`,
		`</api/v1/maps>; rel="maps"`,
	},
	"/api/v1/maps": {
		`</api/v1/maps/{target}>; rel="item"`,
		`</api/v1/sources>; rel="sources"`,
	},
	"/api/v1/maps/{target}": {
		`</api/v1/maps>; rel="collection"`,
	},
	"/api/v1/sources": {
		`</api/v1/maps>; rel="maps"`,
	},
	"/api/v1/state": {
		`</api/v1/maps>; rel="maps"`,
	},
}

// LinkTransformer returns a Huma Transformer that injects RFC 8288 Link
// headers for the API routes.
func LinkTransformer() huma.Transformer {
	return humastar.LinkTransformer(links)
}
