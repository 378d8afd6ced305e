package imagetools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// schemaFor generates the JSON Schema for a tool's argument struct from its
// json/jsonschema field tags.
func schemaFor[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	var v T
	data, err := json.Marshal(reflector.Reflect(&v))
	if err != nil {
		// Schemas are built from static types at startup; failing to
		// marshal one is a programming error.
		panic(fmt.Sprintf("imagetools: reflect schema: %v", err))
	}

	return data
}
