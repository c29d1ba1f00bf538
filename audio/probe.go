// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"os"
)

// ProbeFile opens path and asks the format matching its extension for Info.
func ProbeFile(r *Registry, path string) (Info, error) {
	f, ok := r.ForPath(path)
	if !ok {
		return Info{}, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if f.Prober == nil {
		return Info{}, fmt.Errorf("%s: %w", f.Name, ErrNoProber)
	}

	fh, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w", err)
	}
	defer fh.Close()

	info, err := f.Prober.Probe(fh)
	if err != nil {
		return Info{}, fmt.Errorf("probing %s: %w", path, err)
	}

	return info, nil
}
