//go:build !lilv

package lv2

import "lv2fix/internal/core/errors"

const lilvAvailable = false

func openLilv() (Backend, error) {
	return nil, errors.New(errors.CodeNotSupported, "lv2fix was built without lilv support (rebuild with -tags lilv, or use the catalog backend)")
}
