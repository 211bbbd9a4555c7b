package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/hpungsan/coverity-mcp/internal/errors"
)

// decode unmarshals tool or prompt arguments into a typed struct.
// Any mismatch between the arguments and T is an INVALID_REQUEST error.
func decode[T any](args any) (T, error) {
	var result T
	if args == nil {
		return result, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("marshal args: %v", err))
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, errors.NewInvalidRequest(fmt.Sprintf("invalid arguments: %v", err))
	}
	return result, nil
}
