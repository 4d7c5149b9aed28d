package route

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/gosimple/slug"
)

// ConvertFunc maps a captured word to a typed value.
type ConvertFunc func(word string) (any, error)

// Converters is a named set of converters resolved when a template is compiled.
type Converters struct {
	mu    sync.RWMutex
	funcs map[string]ConvertFunc
}

// NewConverters returns a registry holding the builtin converters:
// int, float, bool and slug.
func NewConverters() *Converters {
	c := &Converters{funcs: make(map[string]ConvertFunc)}
	c.funcs["int"] = convertInt
	c.funcs["float"] = convertFloat
	c.funcs["bool"] = convertBool
	c.funcs["slug"] = convertSlug
	return c
}

// Define adds a converter. Names are unique; routes already compiled keep
// the function they resolved.
func (c *Converters) Define(name string, fn ConvertFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: name=%q", ErrInvalidConverter, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.funcs[name]; ok {
		return fmt.Errorf("%w: %s", ErrConverterExists, name)
	}
	c.funcs[name] = fn
	return nil
}

// Lookup returns the converter registered under name.
func (c *Converters) Lookup(name string) (ConvertFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.funcs[name]
	return fn, ok
}

// Names returns the registered converter names in sorted order.
func (c *Converters) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.funcs))
	for name := range c.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func convertInt(word string) (any, error) {
	return strconv.Atoi(word)
}

func convertFloat(word string) (any, error) {
	return strconv.ParseFloat(word, 64)
}

func convertBool(word string) (any, error) {
	return strconv.ParseBool(word)
}

func convertSlug(word string) (any, error) {
	if !slug.IsSlug(word) {
		return nil, fmt.Errorf("not a slug: %q", word)
	}
	return word, nil
}
