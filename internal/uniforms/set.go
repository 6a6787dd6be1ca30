package uniforms

import (
	"fmt"
	"strconv"
	"strings"
)

// Param is a named value.
type Param struct {
	Name  string
	Value Value
}

// Set is an ordered collection of uniquely named parameters.
type Set struct {
	params []Param
	index  map[string]int
}

// NewSet returns an empty set with room for n parameters.
func NewSet(n int) *Set {
	return &Set{
		params: make([]Param, 0, n),
		index:  make(map[string]int, n),
	}
}

// Add appends a parameter. Names must be unique within the set.
func (s *Set) Add(name string, v Value) error {
	if _, ok := s.index[name]; ok {
		return fmt.Errorf("duplicate parameter %q", name)
	}
	s.index[name] = len(s.params)
	s.params = append(s.params, Param{Name: name, Value: v})
	return nil
}

// Lookup returns the value stored under name.
func (s *Set) Lookup(name string) (Value, bool) {
	i, ok := s.index[name]
	if !ok {
		return Value{}, false
	}
	return s.params[i].Value, true
}

// Params returns the parameters in emission order. The slice must not be modified.
func (s *Set) Params() []Param { return s.params }

func (s *Set) Len() int { return len(s.params) }

// Groups returns how many elements of the array parameter named array ("metaballs", "lights")
// the set holds. It returns an error when the indices are not contiguous from 0.
func (s *Set) Groups(array string) (int, error) {
	seen := make(map[int]bool)
	prefix := array + "["
	for _, p := range s.params {
		rest, ok := strings.CutPrefix(p.Name, prefix)
		if !ok {
			continue
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return 0, fmt.Errorf("malformed parameter name %q", p.Name)
		}
		i, err := strconv.Atoi(rest[:end])
		if err != nil || i < 0 {
			return 0, fmt.Errorf("malformed index in parameter name %q", p.Name)
		}
		seen[i] = true
	}
	for i := range len(seen) {
		if !seen[i] {
			return 0, fmt.Errorf("%s indices are not contiguous: %d is missing", array, i)
		}
	}
	return len(seen), nil
}
