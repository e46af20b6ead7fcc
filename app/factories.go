package app

import (
	"fmt"
	"reflect"
	"sort"
)

// Factories maps component names to constructor functions. Arguments of every
// constructor are resolved by type from results of other constructors.
type Factories map[string]interface{}
type dependencies map[string]dependency
type instances map[string]reflect.Value
type dependency struct {
	Rv  *reflect.Value
	Out reflect.Type
	In  []reflect.Type
}

func (i instances) With(k string, v any) instances {
	i[k] = reflect.ValueOf(v)
	return i
}

func (i instances) Singletons() Singletons {
	// de-reflect dependencies
	singletons := Singletons{}
	for k := range i {
		singletons[k] = i[k].Interface()
	}
	return singletons
}

// Singletons are initialized components by their names
type Singletons map[string]interface{}

func (c Factories) Init() (Singletons, error) {
	deps, err := c.dependencies()
	if err != nil {
		return nil, err
	}
	inst := instances{}
	for _, k := range deps.names() {
		dep, err := deps.resolve(k, inst)
		if err != nil {
			return nil, err
		}
		inst[k] = dep
	}
	return inst.Singletons(), nil
}

func (c Factories) dependencies() (dependencies, error) {
	deps := dependencies{}
	for k, v := range c {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Func {
			return nil, fmt.Errorf("%s is not a function", k)
		}
		t := rv.Type()
		if t.NumOut() == 0 || t.NumOut() > 2 {
			// two-output factories expect a second result as error
			return nil, fmt.Errorf("%s is not a factory", k)
		}
		d := dependency{Rv: &rv}
		d.Out = t.Out(0)
		for i := 0; i < t.NumIn(); i++ {
			d.In = append(d.In, t.In(i))
		}
		deps[k] = d
	}
	return deps, nil
}

// names are sorted, so that initialization order is stable between runs
func (deps dependencies) names() (names []string) {
	for k := range deps {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (deps dependencies) resolve(k string, inst instances) (reflect.Value, error) {
	ex, ok := inst[k]
	if ok {
		return ex, nil
	}
	t, ok := deps[k]
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s is not declared", k)
	}
	args := []reflect.Value{}
	for _, in := range t.In {
		var candidates []string
		isInIface := in.Kind() == reflect.Interface
		for _, otherKey := range deps.names() {
			otherType := deps[otherKey]
			inImplsType := isInIface && otherType.Out.Implements(in)
			inEqualsType := otherType.Out == in
			if !inImplsType && !inEqualsType {
				continue
			}
			candidates = append(candidates, otherKey)
		}
		if len(candidates) == 0 {
			return reflect.Value{}, fmt.Errorf("cannot find %s for %s", in, k)
		}
		if len(candidates) > 1 {
			return reflect.Value{}, fmt.Errorf("ambiguous %s for %s: %v", in, k, candidates)
		}
		dep, err := deps.resolve(candidates[0], inst)
		if err != nil {
			return reflect.Value{}, fmt.Errorf(
				"cannot resolve %s because of %s: %s", k, candidates[0], err)
		}
		args = append(args, dep)
	}
	var err error
	res := t.Rv.Call(args)
	inst[k] = res[0]
	if len(res) == 2 && res[1].Interface() != nil {
		err = res[1].Interface().(error)
	}
	return inst[k], err
}
