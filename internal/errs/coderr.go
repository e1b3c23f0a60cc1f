// Package errs provides the CodeError used throughout the dispatcher: a
// typed, stack-annotated error whose Code matches one of the §6/§7 wire
// codes (MALFORMED, UNAUTHENTICATED, ...). Handlers put Msg on the wire;
// Is compares two CodeErrors by Code (and DefaultCodeRelation families)
// rather than by message.
package errs

import (
	"errors"
	"strconv"
	"strings"

	"dungeonhub/internal/errs/stack"
)

const stackSkip = 2

var DefaultCodeRelation = newCodeRelation()

// CodeError is the one error type the core returns to callers; its Msg
// field is serialized verbatim as the wire response's `code` string
// (the codes in §6/§7 are strings, not integers, so Msg
// carries the wire code and Code carries a stable internal classification
// number used only for Is-style comparisons and metrics).
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) CodeError {
	return CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

func (e *CodeError) WithDetail(detail string) CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Wrap() error {
	return stack.New(e, stackSkip)
}

func (e *CodeError) Is(target error) bool {
	var codeErr *CodeError
	if !errors.As(target, &codeErr) {
		return false
	}
	if e.Code == codeErr.Code {
		return true
	}
	return DefaultCodeRelation.Is(e.Code, codeErr.Code)
}

// New builds a plain, unclassified error carrying a message and optional
// key/value context, mirroring the teacher's errs.New signature used
// across the codebase for ad-hoc failures that don't need a wire code.
func New(msg string, kv ...any) error {
	return errors.New(toString(msg, kv))
}

func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return stack.New(err, stackSkip)
}

func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return stack.New(&wrapped{msg: toString(msg, kv), err: err}, stackSkip)
}

type wrapped struct {
	msg string
	err error
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func toString(msg string, kv []any) string {
	if len(kv) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(kv); i++ {
		b.WriteByte(' ')
		b.WriteString(stringify(kv[i]))
	}
	return b.String()
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return strconv.Itoa(int(toInt(v)))
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	default:
		return 0
	}
}

// CodeRelation lets a family of codes (e.g. all "auth" failures) answer Is
// queries against a shared parent without duplicating a switch everywhere.
type CodeRelation interface {
	Add(codes ...int) error
	Is(parent, child int) bool
}

func newCodeRelation() CodeRelation {
	return &codeRelation{m: make(map[int]map[int]struct{})}
}

type codeRelation struct {
	m map[int]map[int]struct{}
}

func (r *codeRelation) Add(codes ...int) error {
	if len(codes) < 2 {
		return New("codes length must be >= 2")
	}
	for i := 1; i < len(codes); i++ {
		parent := codes[i-1]
		s, ok := r.m[parent]
		if !ok {
			s = make(map[int]struct{})
			r.m[parent] = s
		}
		for _, code := range codes[i:] {
			s[code] = struct{}{}
		}
	}
	return nil
}

func (r *codeRelation) Is(parent, child int) bool {
	if parent == child {
		return true
	}
	s, ok := r.m[parent]
	if !ok {
		return false
	}
	_, ok = s[child]
	return ok
}
