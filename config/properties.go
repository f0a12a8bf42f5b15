// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"io"

	"github.com/z5labs/multilang/config/key"
	"github.com/z5labs/multilang/internal/try"

	"github.com/magiconair/properties"
)

// Properties represents a Source where its underlying format
// is a Java style .properties file, the daemon's native format.
type Properties struct {
	r io.Reader
}

// FromProperties returns a source which will apply its config
// from key=value pairs parsed from the given io.Reader.
func FromProperties(r io.Reader) Properties {
	return Properties{r: r}
}

// InvalidPropertiesError occurs if the underlying io.Reader
// contains malformed properties.
type InvalidPropertiesError struct {
	cause error
}

// Error implements the error interface.
func (e InvalidPropertiesError) Error() string {
	return fmt.Sprintf("invalid properties: %s", e.cause)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e InvalidPropertiesError) Unwrap() error {
	return e.cause
}

// Apply implements the Source interface.
func (src Properties) Apply(store Store) (err error) {
	defer try.Close(&err, src.r)

	b, err := io.ReadAll(src.r)
	if err != nil {
		return err
	}

	// ${...} in values such as ARNs must be left untouched.
	l := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	p, err := l.LoadBytes(b)
	if err != nil {
		return InvalidPropertiesError{cause: err}
	}

	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		err = store.Set(key.Name(k), v)
		if err != nil {
			return err
		}
	}
	return nil
}
