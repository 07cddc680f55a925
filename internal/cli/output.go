package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"goalTracker/internal/service"
)

const (
	ExitSuccess = 0
	ExitFailure = 1 // цель не найдена, ошибка хранилища
	ExitUsage   = 2 // неверные аргументы или конфиг
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode достаёт код выхода; по умолчанию ExitFailure
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type response struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *respError `json:"error,omitempty"`
}

type respError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// formatter печатает результат либо текстом, либо JSON-конвертом
type formatter struct {
	format string
	w      io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *formatter {
	return &formatter{format: opts.Format, w: w}
}

// Success в JSON пишет data, в тексте вызывает text
func (f *formatter) Success(data any, text func(io.Writer)) error {
	if f.format == "json" {
		return json.NewEncoder(f.w).Encode(response{Status: "ok", Data: data})
	}
	text(f.w)
	return nil
}

// Failure печатает ошибку в выбранном формате
func (f *formatter) Failure(err error) {
	code := "ERROR"
	message := err.Error()
	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		code = busErr.Code
		message = busErr.Message
	}

	if f.format == "json" {
		_ = json.NewEncoder(f.w).Encode(response{Status: "error", Error: &respError{Code: code, Message: message}})
		return
	}
	fmt.Fprintf(f.w, "Ошибка [%s]: %s\n", code, message)
}
