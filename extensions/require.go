package extensions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/log"
	"grol.io/jsi/eval"
	"grol.io/jsi/object"
	"grol.io/jsi/parser"
)

// fsModule is what require("fs") returns.
var fsModule = func() *object.Map {
	m, err := makeObject(object.Extension{
		Name:     "readFileSync",
		MinArgs:  1,
		MaxArgs:  2,
		Help:     "returns the content of a file (relative to the module path) as a string, the encoding is ignored",
		Callback: readFileSync,
	})
	if err != nil {
		panic(err)
	}
	return m
}()

// sanitizeFileName resolves name against the module path. Unless IOs are
// unrestricted, name must be local: not absolute and not escaping with "..".
func sanitizeFileName(name string) (string, error) {
	if name == "" {
		return "", errors.New("empty file name")
	}
	if unrestrictedIOs {
		log.Infof("Unrestricted IOs, not sanitizing filename: %s", name)
		if filepath.IsAbs(name) {
			return name, nil
		}
		return filepath.Join(modulePath, name), nil
	}
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("file name %q must be relative to the module path without ..", name)
	}
	return filepath.Join(modulePath, name), nil
}

func readFileSync(_ any, _ object.Object, args []object.Object) (object.Object, error) {
	file, err := sanitizeFileName(object.ToString(args[0]))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.Errf("readFileSync %s: %v", file, err)
		return nil, err
	}
	log.LogVf("read %d bytes from %s", len(data), file)
	return object.String{Value: string(data)}, nil
}

// require loads a module once per state: the file runs in a fresh child of
// the root scope with exports and module bound, module.exports is returned.
// A module requiring itself (directly or not) gets the exports so far.
func require(env any, _ object.Object, args []object.Object) (object.Object, error) {
	s := env.(*eval.State)
	name := object.ToString(args[0])
	if name == "fs" {
		return fsModule, nil
	}
	file, err := sanitizeFileName(name)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(file) == "" {
		if _, statErr := os.Stat(file); statErr != nil {
			file += ModuleExtension
		}
	}
	if v, ok := s.Module(file); ok {
		log.Debugf("require(%q): cached %s", name, file)
		return v, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.Errf("require(%q): %v", name, err)
		return nil, err
	}
	program, err := parser.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", strings.TrimPrefix(file, "./"), err)
	}
	exports := object.NewMap()
	module := object.MakeMap("exports", exports)
	scope := object.NewEnclosedEnvironment(s.RootEnv(), "")
	scope.Define("exports", exports)
	scope.Define("module", module)
	s.SetModule(file, exports)
	log.LogVf("require(%q): running %s", name, file)
	if _, err = s.EvalIn(scope, program); err != nil {
		s.DeleteModule(file)
		return nil, err
	}
	res, _ := module.Get("exports")
	s.SetModule(file, res)
	return res, nil
}
