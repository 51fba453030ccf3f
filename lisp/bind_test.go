package lisp_test

import (
	"testing"

	"github.com/opsit-io/opsit-explang-core-sub000/lisptest"
)

func TestBinding(t *testing.T) {
	tests := lisptest.TestSuite{
		{"optional defaults", lisptest.TestSequence{
			{"(defun f (x &optional (a (+ 1 x) sa)) (list x a sa))", "f", ""},
			{"(f 3)", "(3 4 false)", ""},
			{"(f 3 5)", "(3 5 true)", ""},
			{"(f 3 nil)", "(3 nil true)", ""},
			{"(f)", "f: insufficient arguments", ""},
			{"(f 1 2 3)", "f: too many arguments", ""},
			{"((lambda (x &optional (a (+ 1 x) sa)) (list x a sa)) 3)", "(3 4 false)", ""},
		}},
		{"keywords", lisptest.TestSequence{
			{"(defun k (&key a b c) (list a b c))", "k", ""},
			{"(k :a 1 :b 2)", "(1 2 nil)", ""},
			{"(k :c 3 :a 1)", "(1 nil 3)", ""},
			{"(k)", "(nil nil nil)", ""},
			{"(k :a 1 :a 2)", "(1 nil nil)", ""},
			{"(k :d 1)", "k: unexpected keyword parameter: :d", ""},
			{"(k :a)", "k: missing value for keyword parameter: :a", ""},
			{"(k 1 2)", "k: expected keyword parameter name: 1", ""},
			{"(defun kd (x &key (a 10 a-p)) (list x a a-p))", "kd", ""},
			{"(kd 0)", "(0 10 false)", ""},
			{"(kd 0 :a 1)", "(0 1 true)", ""},
			{"(kd :a 1)", "kd: expected keyword parameter name: 1", ""},
		}},
		{"keyword names", lisptest.TestSequence{
			{"(defun k (&key a b) (list a b))", "k", ""},
			{"(set 'kw :a)", ":a", ""},
			{"(k kw 1)", "k: expected keyword parameter name: kw", ""},
			{"(funcall #'k kw 1)", "(1 nil)", ""},
			{"(apply #'k kw 1 '(:b 2))", "(1 2)", ""},
			{"(funcall #'k (car '(:b)) 3)", "(nil 3)", ""},
		}},
		{"rest", lisptest.TestSequence{
			{"(defun r (x &rest y) (list x y))", "r", ""},
			{"(r 1)", "(1 ())", ""},
			{"(r 1 2 3)", "(1 (2 3))", ""},
			{"(r)", "r: insufficient arguments", ""},
		}},
		{"trailing required", lisptest.TestSequence{
			{"(defun tr (a &optional b &required c) (list a b c))", "tr", ""},
			{"(tr 1 2)", "(1 nil 2)", ""},
			{"(tr 1 2 3)", "(1 2 3)", ""},
			{"(tr 1)", "tr: insufficient arguments", ""},
			{"(tr 1 2 3 4)", "tr: too many arguments", ""},
			{"(defun rl (&rest xs &required last) (list xs last))", "rl", ""},
			{"(rl 1 2 3)", "((1 2) 3)", ""},
			{"(rl 1)", "(() 1)", ""},
			{"(rl)", "rl: insufficient arguments", ""},
		}},
		{"rest and keywords", lisptest.TestSequence{
			{"(defun rk (&rest all &key a b) (list all a b))", "rk", ""},
			{"(rk :a 1 :b 2)", "((:a 1 :b 2) 1 2)", ""},
			{"(rk)", "(() nil nil)", ""},
			{"(rk :c 1)", "rk: unexpected keyword parameter: :c", ""},
			{"(defun kr (&key a &allow-other-keys &rest more) (list a more))", "kr", ""},
			{"(kr :a 1 :b 2)", "(1 (:b 2))", ""},
			{"(kr 5 6)", "(nil (5 6))", ""},
			{"(defun ko (&key a &allow-other-keys) a)", "ko", ""},
			{"(ko :b 1 :a 2)", "2", ""},
			{"(ko 1)", "ko: expected keyword parameter name: 1", ""},
		}},
		{"lazy", lisptest.TestSequence{
			{"(defun lz (&lazy x) 1)", "lz", ""},
			{`(lz (error "boom"))`, "1", ""},
			{"(defun twice (&lazy x) (list x x))", "twice", ""},
			{"(set 'n 0)", "0", ""},
			{"(twice (progn (setq n (+ n 1)) n))", "(1 1)", ""},
			{"n", "1", ""},
			{"(defun selfref (&lazy &optional (x (+ x 1))) x)", "selfref", ""},
			{"(selfref)", "lazy argument read while it is being computed", ""},
			{"(selfref 4)", "4", ""},
			{"(set 'ok false)", "false", ""},
			{"(defun retry (&lazy x) (list (try x (catch error e 'failed)) (progn (set 'ok true) x)))", "retry", ""},
			{`(retry (if ok 5 (error "not yet")))`, "(failed 5)", ""},
			{"(defun lr (a &lazy &rest xs) a)", "lr", ""},
			{`(lr 1 (error "x"))`, "1", ""},
			{"(defun lrn (a &lazy &rest xs) (length xs))", "lrn", ""},
			{"(lrn 1 2 3)", "2", ""},
		}},
		{"fresh frames", lisptest.TestSequence{
			{"(defun counter (&optional (x 0)) (setq x (+ x 1)) x)", "counter", ""},
			{"(counter)", "1", ""},
			{"(counter)", "1", ""},
			{"(boundp 'x)", "false", ""},
			{"(defun acc (&optional (l (list))) (setq l (cons 1 l)) l)", "acc", ""},
			{"(acc)", "(1)", ""},
			{"(acc)", "(1)", ""},
			{"(acc '(2))", "(1 2)", ""},
		}},
		{"evaluation order", lisptest.TestSequence{
			{"(defun kk (&key a b) (list a b))", "kk", ""},
			{`(kk :b (progn (print "b") 2) :a (progn (print "a") 1))`, "(1 2)", "b\na\n"},
			{"(defun tr (a &optional b &required c) (list a b c))", "tr", ""},
			{`(tr (progn (print 1) 1) (progn (print 2) 2))`, "(1 nil 2)", "1\n2\n"},
		}},
	}
	lisptest.RunTestSuite(t, tests)
}
