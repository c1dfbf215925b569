// Package a2a exposes the coordination surface to other agent
// processes over HTTP: a single POST endpoint accepts a JSON-RPC
// style envelope naming a command and its parameters, dispatches it
// against agenttools.AgentTools, and replies with a JSON result.
package a2a

import "encoding/json"

// Request is the inbound envelope every call to the message endpoint
// must match.
type Request struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

// Response is the uniform outbound envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func success(data string) Response { return Response{Success: true, Data: data} }
func failure(msg string) Response  { return Response{Success: false, Error: msg} }
