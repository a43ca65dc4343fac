package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	helloSchema    = mustCompile("hello.schema.json")
	posSchema      = mustCompile("pos.schema.json")
	discoverSchema = mustCompile("discover.schema.json")
)

func mustCompile(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(raw)); err != nil {
		panic(err)
	}
	s, err := c.Compile(name)
	if err != nil {
		panic(err)
	}
	return s
}

func validate(s *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("not json: %w", err)
	}
	return s.Validate(v)
}

// ValidateHello checks an inbound handshake against the wire schema
// before it is decoded into HelloMsg.
func ValidateHello(raw []byte) error { return validate(helloSchema, raw) }

func ValidatePos(raw []byte) error { return validate(posSchema, raw) }

func ValidateDiscover(raw []byte) error { return validate(discoverSchema, raw) }
