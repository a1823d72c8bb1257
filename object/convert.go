package object

import (
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// FormatNumber renders a float the way scripts see numbers: integers
// without a fraction, shortest round trip digits otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // also -0
	}
	abs := math.Abs(f)
	if abs >= 1e-7 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go writes e-07 / e+21, scripts expect e-7 / e+21.
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + exp
}

// ToString is the script level string conversion (used by + and by keys).
func ToString(o Object) string {
	switch v := o.(type) {
	case String:
		return v.Value
	case Number:
		return FormatNumber(v.Value)
	case Boolean:
		return strconv.FormatBool(v.Value)
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case *Array:
		return joinElements(v, ",", nil)
	case *Map:
		return "[object Object]"
	case *Function:
		return v.Literal.String()
	case *Extension:
		return "function " + v.Name + "() { [native code] }"
	default:
		return o.Inspect()
	}
}

// Join is Array.prototype.join: undefined and null elements are empty.
func Join(a *Array, sep string) string {
	return joinElements(a, sep, nil)
}

func joinElements(a *Array, sep string, seen map[*Array]bool) string {
	if seen[a] {
		return ""
	}
	if seen == nil {
		seen = make(map[*Array]bool)
	}
	seen[a] = true
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		switch ev := e.(type) {
		case Undefined, Null:
		case *Array:
			parts[i] = joinElements(ev, ",", seen)
		default:
			parts[i] = ToString(e)
		}
	}
	delete(seen, a)
	return strings.Join(parts, sep)
}

// ToNumber is the script level numeric conversion.
func ToNumber(o Object) float64 {
	switch v := o.(type) {
	case Number:
		return v.Value
	case Boolean:
		if v.Value {
			return 1
		}
		return 0
	case Null:
		return 0
	case String:
		return StringToNumber(v.Value)
	case *Array:
		return StringToNumber(ToString(v))
	default:
		return math.NaN()
	}
}

// StringToNumber converts a whole (trimmed) string, NaN if it isn't a number.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if strings.ContainsAny(s, "_xXpPnN") && !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return math.NaN() // reject Go only syntax (1_000, inf, nan, hex floats).
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		i, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(i)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeErr(err) {
		return math.NaN()
	}
	return f
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError) //nolint:errorlint // ParseFloat returns this concrete type.
	return ok && ne.Err == strconv.ErrRange
}

// ParseFloatPrefix is parseFloat(): the longest leading decimal literal
// (after leading whitespace), NaN if there is none.
func ParseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	if strings.HasPrefix(s[end:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !isRangeErr(err) {
		return math.NaN()
	}
	return f
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// Truthy: false, 0, NaN, "", null and undefined are false, everything else true.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case Boolean:
		return v.Value
	case Number:
		return v.Value != 0 && !math.IsNaN(v.Value)
	case String:
		return v.Value != ""
	case Undefined, Null:
		return false
	default:
		return true
	}
}

// StrictEquals is ===: same type and same value; objects, arrays and
// functions by identity.
func StrictEquals(left, right Object) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch l := left.(type) {
	case Number:
		return l.Value == right.(Number).Value
	case String:
		return l.Value == right.(String).Value
	case Boolean:
		return l.Value == right.(Boolean).Value
	case Undefined, Null:
		return true
	default:
		return left == right
	}
}

func isPrimitive(o Object) bool {
	switch o.Type() { //nolint:exhaustive // only primitives.
	case UNDEF, NIL, NUMBER, STRING, BOOLEAN:
		return true
	default:
		return false
	}
}

func toPrimitive(o Object) Object {
	if isPrimitive(o) {
		return o
	}
	return String{Value: ToString(o)}
}

// Add is the polymorphic +: concatenation when either side is (or converts
// to) a string, numeric addition otherwise.
func Add(left, right Object) Object {
	lp := toPrimitive(left)
	rp := toPrimitive(right)
	if lp.Type() == STRING || rp.Type() == STRING {
		return String{Value: ToString(lp) + ToString(rp)}
	}
	return Number{Value: ToNumber(lp) + ToNumber(rp)}
}

func Multiply(left, right Object) Object {
	return Number{Value: ToNumber(left) * ToNumber(right)}
}

func Negate(o Object) Object {
	return Number{Value: -ToNumber(o)}
}

func Not(o Object) Object {
	return NativeBoolToBooleanObject(!Truthy(o))
}

// Less is <: string comparison when both sides are strings, numeric
// otherwise (NaN compares false).
func Less(left, right Object) Object {
	lp := toPrimitive(left)
	rp := toPrimitive(right)
	if ls, ok := lp.(String); ok {
		if rs, ok := rp.(String); ok {
			return NativeBoolToBooleanObject(ls.Value < rs.Value)
		}
	}
	return NativeBoolToBooleanObject(ToNumber(lp) < ToNumber(rp))
}

// ToIndex converts a value to a non negative integer index, false if it
// isn't one (fractional, negative, NaN, non numeric string).
func ToIndex(o Object) (int, bool) {
	var f float64
	switch v := o.(type) {
	case Number:
		f = v.Value
	case String:
		if v.Value == "" || (len(v.Value) > 1 && v.Value[0] == '0') {
			return 0, false
		}
		for i := range len(v.Value) {
			if !isDigit(v.Value[i]) {
				return 0, false
			}
		}
		f = StringToNumber(v.Value)
	default:
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) { // also NaN
		return 0, false
	}
	i, err := safecast.Convert[int](f)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ToInteger is the truncating integer conversion used for position
// arguments, clamped to [lo, hi]. NaN is 0.
func ToInteger(o Object, lo, hi int) int {
	f := ToNumber(o)
	if math.IsNaN(f) {
		f = 0
	}
	f = math.Trunc(math.Max(float64(lo), math.Min(float64(hi), f)))
	i, err := safecast.Convert[int](f)
	if err != nil {
		return lo
	}
	return i
}
