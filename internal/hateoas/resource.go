package hateoas

import (
	"encoding/json"
	"net/http"
)

// ContentTypeVndError is the media type of error envelopes.
const ContentTypeVndError = "application/vnd.error+json"

// Resource wraps a representation together with its links. It serializes as
// {"<Name>": Content, "links": [...]}.
type Resource[T any] struct {
	Name    string
	Content T
	Links   Links
}

func (r Resource[T]) MarshalJSON() ([]byte, error) {
	content, err := json.Marshal(r.Content)
	if err != nil {
		return nil, err
	}
	links := r.Links
	if links == nil {
		links = Links{}
	}
	return json.Marshal(map[string]any{
		r.Name:  json.RawMessage(content),
		"links": links,
	})
}

// Resources is a links-bearing collection envelope.
type Resources[T any] struct {
	Links   Links `json:"links"`
	Content []T   `json:"content"`
}

// NewResources wraps content, never producing null arrays.
func NewResources[T any](content []T, links ...Link) Resources[T] {
	if content == nil {
		content = []T{}
	}
	ls := Links(links)
	if ls == nil {
		ls = Links{}
	}
	return Resources[T]{Links: ls, Content: content}
}

// VndError is one entry of a vnd.error envelope.
type VndError struct {
	Logref  string `json:"logref"`
	Message string `json:"message"`
	Links   Links  `json:"links"`
}

// VndErrors serializes as a JSON array of errors.
type VndErrors []VndError

// NewVndErrors builds an envelope carrying a single message.
func NewVndErrors(logref, message string) VndErrors {
	return VndErrors{{Logref: logref, Message: message, Links: Links{}}}
}

// WriteVndError writes a single-message vnd.error response.
func WriteVndError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", ContentTypeVndError)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(NewVndErrors("error", message))
}
