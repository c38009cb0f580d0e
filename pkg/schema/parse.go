package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a form document. JSON is tried first, then YAML, so the same
// files work with either syntax.
func Parse(data []byte) (Form, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Form{}, errors.New("schema: document is empty")
	}

	var form Form
	jsonErr := json.Unmarshal(data, &form)
	if jsonErr == nil {
		return form, nil
	}

	form = Form{}
	if err := yaml.Unmarshal(data, &form); err == nil {
		return form, nil
	}

	return Form{}, fmt.Errorf("schema: parse: invalid JSON or YAML: %w", jsonErr)
}

// Load reads and parses a form document. fsys is consulted for SourceKindFS
// sources and may be nil otherwise.
func Load(ctx context.Context, fsys fs.FS, src Source) (Form, error) {
	if err := ctx.Err(); err != nil {
		return Form{}, err
	}
	if src == nil {
		return Form{}, errors.New("schema: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if fsys == nil {
			return Form{}, errors.New("schema: fs source requires a filesystem")
		}
		data, err = fs.ReadFile(fsys, src.Location())
	default:
		err = fmt.Errorf("unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Form{}, fmt.Errorf("schema: read %s: %w", src.Location(), err)
	}

	form, err := Parse(data)
	if err != nil {
		return Form{}, fmt.Errorf("%w (%s)", err, src.Location())
	}
	return form, nil
}
