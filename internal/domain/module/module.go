package module

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// DefaultBranch is the only deployment slot this tool writes to.
const DefaultBranch = "default"

// Kind tells text modules apart from binary ones.
type Kind int

const (
	// KindText is a script module sent as a plain JSON string.
	KindText Kind = iota
	// KindBinary is a module sent as {"binary": "<base64>"}.
	KindBinary
)

// String returns a short human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Module is a single named unit of uploaded code.
type Module struct {
	// kind selects the JSON representation.
	kind Kind
	// text holds script source for KindText.
	text string
	// data holds raw bytes for KindBinary.
	data []byte
}

// binaryPayload is the wire form of a binary module.
type binaryPayload struct {
	Binary string `json:"binary"`
}

// NewText returns a script module.
func NewText(text string) Module {
	return Module{
		kind: KindText,
		text: text,
	}
}

// NewBinary returns a binary module. The slice is not copied.
func NewBinary(data []byte) Module {
	return Module{
		kind: KindBinary,
		data: data,
	}
}

// Kind reports whether the module is text or binary.
func (m Module) Kind() Kind {
	return m.kind
}

// Text returns the script source; empty for binary modules.
func (m Module) Text() string {
	return m.text
}

// Data returns the raw bytes; nil for text modules.
func (m Module) Data() []byte {
	return m.data
}

// Size returns the payload size in bytes before encoding.
func (m Module) Size() int {
	if m.kind == KindBinary {
		return len(m.data)
	}

	return len(m.text)
}

// MarshalJSON encodes text modules as strings and binary modules as {"binary": ...}.
func (m Module) MarshalJSON() ([]byte, error) {
	if m.kind == KindBinary {
		return json.Marshal(binaryPayload{
			Binary: base64.StdEncoding.EncodeToString(m.data),
		})
	}

	return json.Marshal(m.text)
}

// UnmarshalJSON accepts either representation produced by MarshalJSON.
func (m *Module) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*m = NewText(text)
		return nil
	}

	var payload binaryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode module: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(payload.Binary)
	if err != nil {
		return fmt.Errorf("decode binary module: %w", err)
	}

	*m = NewBinary(raw)

	return nil
}

// Collection maps module names to their content.
type Collection map[string]Module

// NewCollection returns an empty collection.
func NewCollection() Collection {
	return make(Collection)
}

// Put stores m under name. A previous module with the same name is replaced,
// and replaced reports whether that happened.
func (c Collection) Put(name string, m Module) (replaced bool) {
	_, replaced = c[name]
	c[name] = m

	return replaced
}

// Names returns the module names in sorted order.
func (c Collection) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

// UploadRequest is the JSON body of a code upload.
type UploadRequest struct {
	// Branch is the deployment slot, always DefaultBranch.
	Branch string `json:"branch"`
	// Modules is the full set of modules for the branch.
	Modules Collection `json:"modules"`
}

// NewUploadRequest wraps modules into a request for DefaultBranch.
func NewUploadRequest(modules Collection) *UploadRequest {
	if modules == nil {
		modules = NewCollection()
	}

	return &UploadRequest{
		Branch:  DefaultBranch,
		Modules: modules,
	}
}
