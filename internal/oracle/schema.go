package oracle

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// 决策载荷的 JSON Schema。state 为必填枚举，confidence 可省略（回落 LOW）。
const payloadSchema = `{
  "type": "object",
  "required": ["state"],
  "properties": {
    "state": {
      "type": "string",
      "enum": ["ALLOW_LONG", "ALLOW_SHORT", "WAIT",
               "allow_long", "allow_short", "wait"]
    },
    "confidence": {
      "type": "string",
      "enum": ["LOW", "MEDIUM", "HIGH", "low", "medium", "high"]
    },
    "reasoning": {"type": "string"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("oracle.json", strings.NewReader(payloadSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("oracle.json")
	})
	return compiledSchema, schemaErr
}

func validatePayload(raw string) error {
	schema, err := compiled()
	if err != nil {
		return fmt.Errorf("oracle schema 编译失败: %w", err)
	}
	var doc any
	if err := jsonUnmarshal(raw, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("oracle 载荷不符合 schema: %w", err)
	}
	return nil
}
