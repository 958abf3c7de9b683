// Package api exposes retrieval and question answering over REST using fiber.
//
// Routes:
//
//	GET  /check/healthy     liveness probe
//	POST /api/v1/retrieve   {"question": "..."} -> retrieved context
//	POST /api/v1/ask        {"question": "..."} -> answer with sources
package api
