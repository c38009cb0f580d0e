package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ErrPatch is matched by every ApplyPatch failure that is not a schema error.
var ErrPatch = errors.New("editor: patch failed")

// ApplyPatch applies RFC 6902 operations to the JSON form of form and
// returns the result. The patched form must still be a valid schema.
func ApplyPatch(form schema.Form, patchJSON []byte) (schema.Form, error) {
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return schema.Form{}, fmt.Errorf("%w: decode: %v", ErrPatch, err)
	}
	if len(patch) == 0 {
		return form.Clone(), nil
	}

	current, err := json.Marshal(form)
	if err != nil {
		return schema.Form{}, fmt.Errorf("%w: marshal form: %v", ErrPatch, err)
	}

	modified, err := patch.Apply(current)
	if err != nil {
		return schema.Form{}, fmt.Errorf("%w: apply: %v", ErrPatch, err)
	}

	var out schema.Form
	if err := json.Unmarshal(modified, &out); err != nil {
		return schema.Form{}, fmt.Errorf("%w: patched document is not a form: %v", ErrPatch, err)
	}
	if err := out.Validate(); err != nil {
		return schema.Form{}, err
	}
	return out, nil
}
