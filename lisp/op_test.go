package lisp_test

import (
	"testing"

	"github.com/opsit-io/opsit-explang-core-sub000/lisptest"
)

func TestEval(t *testing.T) {
	tests := lisptest.TestSuite{
		{"raw strings", lisptest.TestSequence{
			{`"""a raw string"""`, `"a raw string"`, ""},
			{"\"\"\"a raw\nstring\"\"\"", `"a raw\nstring"`, ""},
		}},
		{"quotes", lisptest.TestSequence{
			{"3", "3", ""},
			{"'3", "3", ""},
			{"''3", "(quote 3)", ""},
			{"'x", "x", ""},
			{"(quote (a (b) []))", "(a (b) ())", ""},
		}},
		{"function basics", lisptest.TestSequence{
			{"((lambda (x) x) 1)", "1", ""},
			{"((lambda () (+ 1 1)))", "2", ""},
			{"((lambda (x y) (+ x y)) 1 2)", "3", ""},
			{"((lambda (x y) (+ x y)) 1)", "insufficient arguments", ""},
			{`((lambda (x) "doc" (* x 3)) 2)`, "6", ""},
			{`((lambda () "only a string"))`, `"only a string"`, ""},
		}},
		{"documented scope", lisptest.TestSequence{
			{"(let ((x 1) (y 2)) (defun add-y (x) (+ x y)))", "add-y", ""},
			{"(add-y 3)", "5", ""},
			{"(let ((x 1) (y 2)) (if x (+ x y) y))", "3", ""},
			{`(let ((x 1) (y 2))
				(cond
					((< y 0) y)
					(else x)))`, "1", ""},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}

func TestScope(t *testing.T) {
	tests := lisptest.TestSuite{
		{"replace and global replace", lisptest.TestSequence{
			{"(let () (gset 'x 3))", "3", ""},
			{"x", "3", ""},
			{"(let () (set 'y 3))", "3", ""},
			{"y", "variable does not exist: y", ""},
			{"(let () (gsetq w 1) (setq z 2))", "2", ""},
			{"w", "1", ""},
			{"z", "variable does not exist: z", ""},
			{"(let ((x 1)) (gset 'x 10) x)", "10", ""},
			{"x", "3", ""},
		}},
		{"lexical scope", lisptest.TestSequence{
			{"(let ((x 1)) x)", "1", ""},
			{"(set 'x 1)", "1", ""},
			{"(let ((x 2)) x)", "2", ""},
			{"x", "1", ""},
			{"(let ((x 3)) (defun fn (y) (+ x y)))", "fn", ""},
			{"(let ((x 2)) (fn 2))", "5", ""},
			{"(((lambda (x) (lambda () (+ x 2))) 3))", "5", ""},
			{"(defun make-adder (n) (lambda (x) (+ x n)))", "make-adder", ""},
			{"(funcall (make-adder 3) 4)", "7", ""},
		}},
		{"let", lisptest.TestSequence{
			{"(let ((x 1) (y 2)) (+ x y))", "3", ""},
			{"(let* ((x 1) (y (+ x 1))) y)", "2", ""},
			{"(let ((x 1)) (let ((x 2) (y x)) y))", "1", ""},
			{"(let (a (b)) (list a b))", "(nil nil)", ""},
			{"(let ((x 1) (x 2)) x)", "variable already defined in this scope: x", ""},
			{"(let ((1 2)) 1)", "let: binding name is not a symbol: 1", ""},
			{"(let x 1)", "let: binding list expected: x", ""},
		}},
		{"unbound", lisptest.TestSequence{
			{"a", "variable does not exist: a", ""},
			{"(boundp 'a)", "false", ""},
			{"(set 'a 1)", "1", ""},
			{"(boundp 'a)", "true", ""},
			{"(makunbound 'a)", "true", ""},
			{"a", "variable does not exist: a", ""},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}

func TestControl(t *testing.T) {
	tests := lisptest.TestSuite{
		{"conditionals", lisptest.TestSequence{
			{"(if true 1 2)", "1", ""},
			{"(if nil 1 2)", "2", ""},
			{"(if () 1 2 3)", "3", ""},
			{"(if false 1)", "nil", ""},
			{"(if)", "if: insufficient arguments", ""},
			{"(cond ((= 1 2) 'a) ((= 1 1) 'b) (else 'c))", "b", ""},
			{"(cond ((= 1 2) 'a) (else 'c))", "c", ""},
			{"(cond (false 1))", "nil", ""},
			{"(cond (42))", "42", ""},
			{"(cond (else 1) (true 2))", "cond: invalid syntax: else", ""},
		}},
		{"and or", lisptest.TestSequence{
			{"(and 1 2 3)", "3", ""},
			{"(and 1 false 3)", "false", ""},
			{"(and)", "true", ""},
			{"(or nil false 7)", "7", ""},
			{"(or)", "nil", ""},
			{`(or 1 (error "not evaluated"))`, "1", ""},
		}},
		{"loops", lisptest.TestSequence{
			{"(let ((sum 0)) (dotimes (i 5 sum) (setq sum (+ sum i))))", "10", ""},
			{"(dotimes (i 3) (print i))", "nil", "0\n1\n2\n"},
			{"(dotimes (i 3 i))", "3", ""},
			{"(dolist (x '(a b) 'done) (print x))", "done", "a\nb\n"},
			{"(let ((i 0)) (while (< i 3) (setq i (+ i 1))) i)", "3", ""},
			{"(dotimes (i 1.5))", "dotimes: count is not an integer: 1.5", ""},
			{"(dotimes i)", "dotimes: invalid control list: i", ""},
		}},
		{"progn", lisptest.TestSequence{
			{"(progn)", "nil", ""},
			{`(progn (print "a") (print "b") 3)`, "3", "a\nb\n"},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}

func TestTry(t *testing.T) {
	tests := lisptest.TestSuite{
		{"finally", lisptest.TestSequence{
			{"(set 'events ())", "()", ""},
			{"(try (set 'events (cons 'body events)) (finally (set 'events (cons 'fin events))))", "(body)", ""},
			{"events", "(fin body)", ""},
			{`(try 1 (finally (print "once")))`, "1", "once\n"},
			{`(try (error 'oops "bad") (catch oops e (error-message e)) (finally (print "cleanup")))`, `"bad"`, "cleanup\n"},
			{`(try (error 'oops "bad") (catch other e 1) (finally (print "cleanup")))`, "bad", "cleanup\n"},
			{`(try 1 (finally (print "a")) (finally (print "b")))`, "1", "a\nb\n"},
			{`(try 1 (finally (error "late")))`, "late", ""},
			{`(try (error "early") (finally (error "late")))`, "late", ""},
		}},
		{"catch", lisptest.TestSequence{
			{`(try (error "x") (catch error e (boundp 'e)))`, "true", ""},
			{"(boundp 'e)", "false", ""},
			{`(try (error 'my-cond "msg" 42) (catch condition e e))`, "#<error my-cond: msg 42>", ""},
			{`(try (error 'b "x") (catch a e 1) (catch b e 2) (catch condition e 3))`, "2", ""},
			{`(try (error 'b "x") (catch :b e 2))`, "2", ""},
			{`(error-condition (try (car 1) (catch error e e)))`, "error", ""},
			{`(error-condition (try undefined-var (catch error e e)))`, "unbound-variable", ""},
			{`(try (no-such-fn) (catch undefined-function e (error-message e)))`, `"undefined function: no-such-fn"`, ""},
			{`(try (car) (catch binding-error e (error-message e)))`, `"car: insufficient arguments"`, ""},
			{`(try (error 'inner "x") (catch inner e (error 'outer "y")))`, "y", ""},
			{`(try (try (error 'inner "x") (catch other e 0)) (catch inner e 1))`, "1", ""},
			{`(try 1 (catch error))`, "try: catch clause needs a condition and a variable: (catch error)", ""},
			{`(try (finally 1) 2)`, "try: expression follows a handler clause: 2", ""},
		}},
		{"error values", lisptest.TestSequence{
			{`(set 'err (try (list 1 (error "deep")) (catch error e e)))`, "#<error error: deep>", ""},
			{"(type-of err)", "error", ""},
			{"(error-trace err)", `("error" "list" "try" "set")`, ""},
			{"(error-message 1)", "argument is not an error: 1", ""},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}

func TestReturn(t *testing.T) {
	tests := lisptest.TestSuite{
		{"non-local return", lisptest.TestSequence{
			{"(defun nr (x) (let ((y 1)) (if (> x 0) (progn (while true (return (+ x y)))))) 0)", "nr", ""},
			{"(nr 5)", "6", ""},
			{"(nr -1)", "0", ""},
			{"(defun find-first (pred lis) (dolist (x lis) (if (funcall pred x) (return x))) nil)", "find-first", ""},
			{"(find-first (lambda (n) (> n 2)) '(1 2 3 4))", "3", ""},
			{"(find-first (lambda (n) (> n 9)) '(1 2 3 4))", "nil", ""},
			{"(defun outer () (funcall (lambda () (return 1))) 2)", "outer", ""},
			{"(outer)", "2", ""},
			{"(defun empty () (return) 1)", "empty", ""},
			{"(empty)", "nil", ""},
		}},
		{"return and try", lisptest.TestSequence{
			{`(defun rf () (try (return 1) (finally (print "f"))) 2)`, "rf", ""},
			{"(rf)", "1", "f\n"},
			{"(defun rc () (try (return 5) (catch condition e 0)) 6)", "rc", ""},
			{"(rc)", "5", ""},
		}},
		{"return from arguments", lisptest.TestSequence{
			{"(defun ra () (list 1 (return 2) 3))", "ra", ""},
			{"(ra)", "2", ""},
		}},
		{"top level", lisptest.TestSequence{
			{"(return 7)", "7", ""},
			{"(progn (return 8) 9)", "8", ""},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}

func TestFunctions(t *testing.T) {
	tests := lisptest.TestSuite{
		{"dispatch", lisptest.TestSequence{
			{"[1 (+ 1 1) 3]", "(1 2 3)", ""},
			{"[]", "()", ""},
			{"()", "()", ""},
			{"((lambda (x) (* x 2)) 4)", "8", ""},
			{"(set 'f (lambda (x) (+ x 1)))", "#<lambda (x)>", ""},
			{"(f 1)", "2", ""},
			{"(undefined-thing 1)", "undefined function: undefined-thing", ""},
			{"(funcall 'if 1 2)", "special form used as a function: if", ""},
			{"(1 2)", "invalid function designator: 1", ""},
			{"((+ 1 1) 2)", "not a function: 2", ""},
		}},
		{"redefinition", lisptest.TestSequence{
			{"(defun g () 1)", "g", ""},
			{"(defun h () (g))", "h", ""},
			{"(h)", "1", ""},
			{"(defun g () 2)", "g", ""},
			{"(h)", "2", ""},
			{"(defun g (x) x)", "g", ""},
			{"(h)", "g: insufficient arguments", ""},
			{"(fmakunbound 'g)", "true", ""},
			{"(h)", "undefined function: g", ""},
			{"(defun if () 1)", "cannot redefine special form: if", ""},
			{"(fboundp 'if)", "true", ""},
		}},
		{"recursion", lisptest.TestSequence{
			{"(defun ev? (n) (if (= n 0) true (od? (- n 1))))", "ev?", ""},
			{"(defun od? (n) (if (= n 0) false (ev? (- n 1))))", "od?", ""},
			{"(ev? 10)", "true", ""},
			{"(od? 7)", "true", ""},
			{"(defun fact (n) (if (<= n 1) 1 (* n (fact (- n 1)))))", "fact", ""},
			{"(fact 10)", "3628800", ""},
		}},
		{"function values", lisptest.TestSequence{
			{"(function car)", "#<builtin car>", ""},
			{"#'car", "#<builtin car>", ""},
			{"(lambda (x &optional (y 1)) x)", "#<lambda (x &optional (y 1))>", ""},
			{"(defun named (a) a)", "named", ""},
			{"#'named", "#<function named (a)>", ""},
			{"(funcall #'list 1 2)", "(1 2)", ""},
			{"(funcall 'named 3)", "3", ""},
			{"(apply #'+ 1 2 '(3 4))", "10", ""},
			{"(apply #'list)", "()", ""},
			{"(eval '(+ 1 2))", "3", ""},
			{"(eval (list 'list 1 :a))", "(1 :a)", ""},
			{"#'(lambda (x) x)", "#<lambda (x)>", ""},
			{"(function 1)", "function: function name or lambda expected: 1", ""},
			{"(lambda (&foo) 1)", "unknown argument keyword: &foo", ""},
		}},
		{"threading", lisptest.TestSequence{
			{"(-> 1 (+ 2) (list 3))", "(3 3)", ""},
			{"(->> 1 (list 2) (list 3))", "(3 (2 1))", ""},
			{"(-> '(1 2 3) reverse car)", "3", ""},
			{"(defun kp (&key &pipe in (scale 1)) (* in scale))", "kp", ""},
			{"(-> 5 (kp :scale 2))", "10", ""},
			{"(->> 5 (kp))", "5", ""},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}

func TestBuiltins(t *testing.T) {
	tests := lisptest.TestSuite{
		{"lists", lisptest.TestSequence{
			{"(cons 1 (cons 2 (cons 3 ())))", "(1 2 3)", ""},
			{"(car '(1 2))", "1", ""},
			{"(car ())", "nil", ""},
			{"(cdr '(1 2 3))", "(2 3)", ""},
			{"(cdr '(1))", "()", ""},
			{"(nth '(a b c) 1)", "b", ""},
			{"(nth '(a b c) 5)", "nil", ""},
			{"(length '(1 2 3))", "3", ""},
			{`(length "abcd")`, "4", ""},
			{"(append '(1) '() '(2 3))", "(1 2 3)", ""},
			{"(reverse '(1 2 3))", "(3 2 1)", ""},
			{"(car 1)", "argument is not a list: 1", ""},
		}},
		{"arithmetic", lisptest.TestSequence{
			{"(+)", "0", ""},
			{"(+ 1 2.5)", "3.5", ""},
			{"(- 5)", "-5", ""},
			{"(- 10 1 2)", "7", ""},
			{"(* 2 3 4)", "24", ""},
			{"(/ 1 2)", "0.5", ""},
			{"(/ 4)", "0.25", ""},
			{"(mod 7 3)", "1", ""},
			{"(mod 1 0)", "division by zero", ""},
			{`(+ 1 "a")`, `argument is not a number: "a"`, ""},
		}},
		{"comparison", lisptest.TestSequence{
			{"(= 1 1.0)", "true", ""},
			{"(< 1 2 3)", "true", ""},
			{"(< 1 3 2)", "false", ""},
			{"(>= 3 3 1)", "true", ""},
			{"(/= 1 2)", "true", ""},
			{"(not nil)", "true", ""},
			{"(not 0)", "false", ""},
			{"(equal '(1 (2)) (list 1 (list 2)))", "true", ""},
			{"(eq '(1) '(1))", "false", ""},
			{"(eq 'a 'a)", "true", ""},
			{"(eq :k :k)", "true", ""},
			{"(identity 5)", "5", ""},
		}},
		{"symbols", lisptest.TestSequence{
			{"(type-of 1)", "int", ""},
			{`(type-of "a")`, "string", ""},
			{"(type-of nil)", "nil", ""},
			{"(type-of '())", "list", ""},
			{"(type-of :k)", "keyword", ""},
			{"(type-of #'car)", "function", ""},
			{"(symbol-name 'abc)", `"abc"`, ""},
			{"(symbol-name :abc)", `"abc"`, ""},
			{"(gensym)", "gensym-1", ""},
			{"(gensym 'tmp)", "tmp-2", ""},
			{`(put-prop 'x 'color "red")`, `"red"`, ""},
			{"(get-prop 'x 'color)", `"red"`, ""},
			{"(get-prop 'x 'size)", "nil", ""},
			{"'(a b :c \"d\" 1.5)", `(a b :c "d" 1.5)`, ""},
		}},
		{"output", lisptest.TestSequence{
			{`(print "a" 1 'b "c d")`, "nil", "a 1 b c d\n"},
			{"(debug-stack)", "nil", "Stack Trace [1 frames -- entrypoint last]:\n  height 0: test:1:1: debug-stack\n"},
		}},
		{"errors", lisptest.TestSequence{
			{`(list 1 2 (error "testerror") 4)`, "testerror", ""},
			{`(error 'custom "a" 1 :b)`, "a 1 :b", ""},
			{`(error-condition (try (error :custom "x") (catch custom e e)))`, "custom", ""},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}
