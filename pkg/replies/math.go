package replies

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var mathRun = regexp.MustCompile(`[\d\s+\-*/().^]+`)

// ExtractExpression returns the first run of arithmetic characters in text
// that contains a digit, with ^ rewritten as exponentiation.
func ExtractExpression(text string) (string, bool) {
	for _, run := range mathRun.FindAllString(text, -1) {
		candidate := strings.TrimSpace(run)
		if !strings.ContainsAny(candidate, "0123456789") {
			continue
		}
		return strings.ReplaceAll(candidate, "^", "**"), true
	}
	return "", false
}

// isArithmetic allows digits, operators and parentheses only. The
// comment markers // and /* are refused so no part of the input is
// silently skipped.
func isArithmetic(s string) bool {
	if strings.Contains(s, "//") || strings.Contains(s, "/*") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case strings.ContainsRune(" \t\n\r+-*/().%", r):
		default:
			return false
		}
	}
	return true
}

// maxBits bounds every intermediate numerator and denominator.
const maxBits = 4096

var errNotArithmetic = errors.New("not an arithmetic expression")

// Number is the exact result of SafeEval. Integral results of integer-only
// expressions render without a fractional part.
type Number struct {
	rat     *big.Rat
	Integer bool
}

// Float returns the value rounded to six decimal places.
func (n Number) Float() float64 {
	if n.rat == nil {
		return 0
	}
	f, _ := n.rat.Float64()
	return math.Round(f*1e6) / 1e6
}

func (n Number) String() string {
	if n.rat == nil {
		return "0"
	}
	if n.Integer {
		return n.rat.Num().String()
	}
	s := strconv.FormatFloat(n.Float(), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// SafeEval evaluates an arithmetic expression made only of numbers,
// + - * / % ** and parentheses. It parses with expr and evaluates the tree
// in exact rational arithmetic, so integer results never overflow. It
// reports false for anything else, including division by zero and results
// too large to represent.
func SafeEval(expression string) (Number, bool) {
	expression = strings.TrimSpace(expression)
	if expression == "" || !isArithmetic(expression) {
		return Number{}, false
	}

	tree, err := parser.Parse(expression)
	if err != nil {
		return Number{}, false
	}
	value, err := evalNode(tree.Node)
	if err != nil {
		return Number{}, false
	}
	if !value.IsInt() {
		if f, _ := value.Float64(); math.IsInf(f, 0) || math.IsNaN(f) {
			return Number{}, false
		}
	}

	integerOnly := !strings.ContainsAny(expression, "./")
	return Number{rat: value, Integer: integerOnly && value.IsInt()}, true
}

func evalNode(node ast.Node) (*big.Rat, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return new(big.Rat).SetInt64(int64(n.Value)), nil
	case *ast.FloatNode:
		r, ok := new(big.Rat).SetString(strconv.FormatFloat(n.Value, 'g', -1, 64))
		if !ok {
			return nil, errNotArithmetic
		}
		return r, nil
	case *ast.UnaryNode:
		v, err := evalNode(n.Node)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "-":
			return v.Neg(v), nil
		case "+":
			return v, nil
		}
	case *ast.BinaryNode:
		left, err := evalNode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := evalNode(n.Right)
		if err != nil {
			return nil, err
		}
		out, err := binary(n.Operator, left, right)
		if err != nil {
			return nil, err
		}
		if out.Num().BitLen() > maxBits || out.Denom().BitLen() > maxBits {
			return nil, fmt.Errorf("result exceeds %d bits", maxBits)
		}
		return out, nil
	}
	return nil, errNotArithmetic
}

func binary(op string, a, b *big.Rat) (*big.Rat, error) {
	out := new(big.Rat)
	switch op {
	case "+":
		return out.Add(a, b), nil
	case "-":
		return out.Sub(a, b), nil
	case "*":
		return out.Mul(a, b), nil
	case "/":
		if b.Sign() == 0 {
			return nil, errors.New("division by zero")
		}
		return out.Quo(a, b), nil
	case "%":
		return floorMod(a, b)
	case "**", "^":
		return pow(a, b)
	}
	return nil, errNotArithmetic
}

// floorMod takes the sign of the divisor, as Python's % does.
func floorMod(a, b *big.Rat) (*big.Rat, error) {
	if !a.IsInt() || !b.IsInt() || b.Sign() == 0 {
		return nil, errNotArithmetic
	}
	r := new(big.Int).Rem(a.Num(), b.Num())
	if r.Sign() != 0 && r.Sign() != b.Num().Sign() {
		r.Add(r, b.Num())
	}
	return new(big.Rat).SetInt(r), nil
}

func pow(base, exp *big.Rat) (*big.Rat, error) {
	if !exp.IsInt() || !exp.Num().IsInt64() {
		fb, _ := base.Float64()
		fe, _ := exp.Float64()
		f := math.Pow(fb, fe)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, errNotArithmetic
		}
		return new(big.Rat).SetFloat64(f), nil
	}

	e := exp.Num().Int64()
	neg := e < 0
	if neg {
		if base.Sign() == 0 {
			return nil, errors.New("division by zero")
		}
		e = -e
	}
	bits := base.Num().BitLen()
	if d := base.Denom().BitLen(); d > bits {
		bits = d
	}
	if bits > 1 && int64(bits-1)*e > maxBits {
		return nil, fmt.Errorf("result exceeds %d bits", maxBits)
	}

	num := new(big.Int).Exp(base.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(base.Denom(), big.NewInt(e), nil)
	if neg {
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den), nil
}
