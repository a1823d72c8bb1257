package extensions_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grol.io/jsi/eval"
	"grol.io/jsi/extensions"
	"grol.io/jsi/object"
	"grol.io/jsi/parser"
)

func TestMain(m *testing.M) {
	if err := extensions.Init(&extensions.Config{ModulePath: "testdata"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func run(t *testing.T, input string) (string, *strings.Builder) {
	t.Helper()
	s := eval.NewState()
	out := &strings.Builder{}
	s.Out = out
	res, err := eval.EvalString(s, input)
	if err != nil {
		t.Fatalf("%s: unexpected error %v", input, err)
	}
	return res.Inspect(), out
}

func TestInitIdempotent(t *testing.T) {
	if err := extensions.Init(nil); err != nil {
		t.Errorf("second init should return the first result, got %v", err)
	}
	names := object.Identifiers()
	expected := []string{"Object", "RegExp", "console", "parseFloat", "require"}
	if strings.Join(names, ",") != strings.Join(expected, ",") {
		t.Errorf("root identifiers got %v expected %v", names, expected)
	}
}

func TestConsoleLog(t *testing.T) {
	_, out := run(t, `console.log('a', 1, [1, 'b'], {k: null}, undefined); console.log();`)
	expected := "a 1 [1, \"b\"] {k: null} undefined\n\n"
	if out.String() != expected {
		t.Errorf("got %q expected %q", out.String(), expected)
	}
}

func TestMethods(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// strings
		{"'hello'.slice(1, 3);", `"el"`},
		{"'hello'.slice(-3);", `"llo"`},
		{"'hello'.slice(3, 1);", `""`},
		{"'hello'.substring(3, 1);", `"el"`},
		{"'hello'.charAt(1);", `"e"`},
		{"'hello'.charAt(9);", `""`},
		{"'hello'.indexOf('l');", "2"},
		{"'hello'.indexOf('l', 3);", "3"},
		{"'hello'.indexOf('z');", "-1"},
		{"'héllo'.indexOf('l');", "2"},
		{"'a-b-c'.replace('-', '+');", `"a+b-c"`},
		{"'x'.replace('x', '$&$&');", `"xx"`},
		{"'a-b'.replace('-', '[$`|$$|$1]');", `"a[a|$|$1]b"`},
		{`'a-b'.replace('-', "$'");`, `"abb"`},
		{"'a-b-c'.replace(/-/g, '+');", `"a+b+c"`},
		{"'a-b-c'.replace(/-/, '+');", `"a+b-c"`},
		{"'john smith'.replace(/(\\w+) (\\w+)/, '$2 $1');", `"smith john"`},
		{"'a1b22'.replace(/\\d+/g, function (m) { return '<' + m + '>'; });", `"a<1>b<22>"`},
		{"'x=1'.replace(/(\\w)=(\\d)/, function (m, k, v, i) { return v + k + i; });", `"1x0"`},
		{"'a,b,,c'.split(',');", `["a", "b", "", "c"]`},
		{"'abc'.split('');", `["a", "b", "c"]`},
		{"'abc'.split();", `["abc"]`},
		{"'a1b2c'.split(/\\d/);", `["a", "b", "c"]`},
		{"'abc'.split(/(?:)/);", `["a", "b", "c"]`},
		{"'a1b'.split(/(\\d)/);", `["a", "1", "b"]`},
		{"''.split(/x/);", `[""]`},
		{"'a,b,c'.split(',', 2);", `["a", "b"]`},
		{"'MiXed'.toUpperCase() + 'MiXed'.toLowerCase();", `"MIXEDmixed"`},
		{"'  pad \\t'.trim();", `"pad \\t"`},
		// arrays
		{"var a = [1]; a.push(2, 3);", "3"},
		{"var a = [1]; a.push(2, 3); a;", "[1, 2, 3]"},
		{"var a = [1, 2]; a.pop();", "2"},
		{"[].pop();", "undefined"},
		{"[1, 2, 3].map(function (x, i) { return x * 10 + i; });", "[10, 21, 32]"},
		{"var sum = 0; [1, 2, 3].forEach(function (x) { sum = sum + x; }); sum;", "6"},
		{"[1, null, 'a', undefined].join('-');", `"1--a-"`},
		{"[1, 2].join();", `"1,2"`},
		{"[1, 2, 3, 4].slice(1, -1);", "[2, 3]"},
		{"[1, 2, 3].slice();", "[1, 2, 3]"},
		{"var a = [1, 2]; a.slice() === a;", "false"},
		{"[1, '1', 1].indexOf('1');", "1"},
		{"[1, 2].indexOf(3);", "-1"},
		// regexps
		{"/(\\d+)-(\\d+)/.exec('tel 12-34');", `["12-34", "12", "34"]`},
		{"/(\\d+)-(\\d+)/.exec('tel 12-34').index;", "4"},
		{"/(\\d+)-(\\d+)/.exec('tel 12-34').input;", `"tel 12-34"`},
		{"/x/.exec('abc');", "null"},
		{"/a(z)?/.exec('a')[1];", "undefined"},
		{"/B/i.test('abc');", "true"},
		{"/^b/m.test('a\\nb');", "false"}, // escapes are not interpreted: the input has no newline.
		{"var r = /a/g; var s = 'aXa'; [r.exec(s).index, r.lastIndex, r.exec(s).index, r.exec(s)];", "[0, 1, 2, null]"},
		{"var n = 0; var r = /o/g; while (r.test('foo')) { n = n + 1; } n;", "2"},
		{"RegExp('a+', 'g').source;", `"a+"`},
		{"RegExp('a+').test('caat');", "true"},
		{"RegExp(/x/g).flags;", `""`},
		// functions
		{"function f(a, b) { return [this, a, b]; } f.apply('t', [1, 2]);", `["t", 1, 2]`},
		{"function f(a, b) { return [this, a, b]; } f.call('t', 1);", `["t", 1, undefined]`},
		{"function f() { return arguments.length; } f.apply(null);", "0"},
		{"parseFloat.call(null, '2.5x');", "2.5"},
		{"[].push.apply;", "[Function: apply]"},
		// host capabilities
		{"parseFloat('3.14abc');", "3.14"},
		{"parseFloat('abc');", "NaN"},
		{"parseFloat(' -1e2');", "-100"},
		{"var p = {hi: 'proto'}; var o = Object.create(p); o.own = 1; [o.hi, o.hasOwnProperty('hi'), o.hasOwnProperty('own')];", `["proto", false, true]`},
		{"var o = Object.create(null); o.__proto__;", "null"},
		{"var p = {}; Object.getPrototypeOf(Object.create(p)) === p;", "true"},
		{"Object.getPrototypeOf({});", "null"},
		{"Object.keys({b: 1, a: 2});", `["b", "a"]`},
		{"Object.keys(['x', 'y']);", `["0", "1"]`},
		{"Object.prototype.hasOwnProperty.call({a: 1}, 'a');", "true"},
		{"Object.prototype.hasOwnProperty.call([1], 0);", "true"},
		{"Object.prototype.hasOwnProperty.call('ab', 'length');", "true"},
		{"var o = {hasOwnProperty: 1}; o.hasOwnProperty;", "1"},
		{"function f() { return this.console; } f() === console;", "true"},
	}
	for _, tt := range tests {
		res, _ := run(t, tt.input)
		if res != tt.expected {
			t.Errorf("%s: got %s expected %s", tt.input, res, tt.expected)
		}
	}
}

func TestCallbackErrorsPropagate(t *testing.T) {
	s := eval.NewState()
	_, err := eval.EvalString(s, "[1, 2].map(function (x) { throw 'bad ' + x; });")
	var thrown *eval.ThrowError
	if !errors.As(err, &thrown) || err.Error() != "bad 1" {
		t.Errorf("expected thrown 'bad 1', got %T %v", err, err)
	}
	_, err = eval.EvalString(s, "'abc'.replace(/b/, function () { return nope.x; });")
	var undef *eval.UndefinedPropertyError
	if !errors.As(err, &undef) {
		t.Errorf("expected UndefinedPropertyError, got %T %v", err, err)
	}
}

func TestHostErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"RegExp('a', 'q');", `invalid regular expression flags "q"`},
		{"Object.create(1);", "object prototype may only be an object or null"},
		{"parseFloat();", "parseFloat: wrong number of arguments got=0, expected at least 1"},
		{"[].push.call('x', 1);", "push called on string, not an array"},
		{"require('../etc/passwd');", `file name "../etc/passwd" must be relative to the module path without ..`},
		{"require('/etc/passwd');", `file name "/etc/passwd" must be relative to the module path without ..`},
		{"require('fs').readFileSync('/etc/passwd');", `file name "/etc/passwd" must be relative to the module path without ..`},
	}
	for _, tt := range tests {
		_, err := eval.EvalString(eval.NewState(), tt.input)
		if err == nil {
			t.Errorf("%s: expected error", tt.input)
			continue
		}
		if err.Error() != tt.msg {
			t.Errorf("%s: got %q expected %q", tt.input, err.Error(), tt.msg)
		}
	}
}

func TestRootCannotBeAssigned(t *testing.T) {
	_, err := eval.EvalString(eval.NewState(), "console = 1;")
	var unknown *eval.UnknownNameError
	if !errors.As(err, &unknown) || !unknown.ReadOnly {
		t.Fatalf("expected read only UnknownNameError, got %T %v", err, err)
	}
	res, _ := run(t, "var console = 'shadow'; console;")
	if res != `"shadow"` {
		t.Errorf("top level var should shadow, got %s", res)
	}
}

func TestRequire(t *testing.T) {
	s := eval.NewState()
	res, err := eval.EvalString(s, `
var lib = require('lib');
var again = require('lib.js');
[lib.name, lib.double(21), lib.loads, lib === again];
`)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Inspect() != `["lib", 42, 1, true]` {
		t.Errorf("got %s", res.Inspect())
	}
	res, err = eval.EvalString(s, "require('replaced')('you');")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Inspect() != `"hello you"` {
		t.Errorf("module.exports replacement got %s", res.Inspect())
	}
	// modules don't see the program's globals.
	res, _ = eval.EvalString(s, "loads;")
	if res != object.UNDEFINED {
		t.Errorf("module scope leaked: %s", res.Inspect())
	}
}

func TestRequireErrors(t *testing.T) {
	_, err := eval.EvalString(eval.NewState(), "require('broken');")
	var syntaxErr *parser.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("expected SyntaxError, got %T %v", err, err)
	}
	_, err = eval.EvalString(eval.NewState(), "require('missing');")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not exist error, got %v", err)
	}
}

func TestFailedRequireIsNotCached(t *testing.T) {
	s := eval.NewState()
	for range 2 {
		_, err := eval.EvalString(s, "require('failing');")
		var thrown *eval.ThrowError
		if !errors.As(err, &thrown) || err.Error() != "module failed" {
			t.Errorf("each require of a failing module should fail, got %v", err)
		}
	}
	if _, ok := s.Module(filepath.Join("testdata", "failing.js")); ok {
		t.Errorf("failed module should not stay cached")
	}
}

func TestReadFileSync(t *testing.T) {
	res, _ := run(t, "require('fs').readFileSync('data.txt', 'utf-8');")
	if res != `"line one\nline two\n"` {
		t.Errorf("got %s", res)
	}
	res, _ = run(t, "require('fs').readFileSync('data.txt').split(/\\n/).length;")
	if res != "3" {
		t.Errorf("split on newlines got %s", res)
	}
}
