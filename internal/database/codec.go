package database

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Page extras are stored as deterministic CBOR so identical frontmatter
// always produces identical bytes.
var (
	extraEnc cbor.EncMode
	extraDec cbor.DecMode
)

func init() {
	var err error
	extraEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("creating cbor encoder: %v", err))
	}
	extraDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("creating cbor decoder: %v", err))
	}
}

func encodeExtra(extra map[string]any) ([]byte, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	data, err := extraEnc.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("encoding page extra: %w", err)
	}
	return data, nil
}

func decodeExtra(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var extra map[string]any
	if err := extraDec.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("decoding page extra: %w", err)
	}
	return extra, nil
}
