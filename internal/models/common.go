package models

import "encoding/json"

// Pagination mirrors the pagination block returned by list endpoints.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Envelope is the wire contract shared by every backend endpoint.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Errors     json.RawMessage `json:"errors,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}
