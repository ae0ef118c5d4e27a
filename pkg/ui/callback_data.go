package ui

import (
	"errors"
	"strings"

	"github.com/ysaito/tg-lingo-circle/pkg/lang"
)

const (
	CallbackPrefix     = "p:"
	MaxCallbackDataLen = 64
)

type Operation string

const (
	OpSetLanguage Operation = "lang"
	OpClose       Operation = "close"
)

type Action struct {
	Op       Operation
	Language string
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidLanguage     = errors.New("invalid callback language")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func BuildLanguageCallback(code string) (string, error) {
	if !lang.IsSupported(code) {
		return "", errInvalidLanguage
	}
	return validateCallbackData(CallbackPrefix + string(OpSetLanguage) + ":" + code)
}

func BuildCloseCallback() (string, error) {
	return validateCallbackData(CallbackPrefix + string(OpClose))
}

func ParseCallbackData(data string) (Action, error) {
	if data == "" {
		return Action{}, errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return Action{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, CallbackPrefix) {
		return Action{}, errInvalidPrefix
	}

	parts := strings.Split(data, ":")
	if len(parts) < 2 || parts[0] != "p" {
		return Action{}, errInvalidPrefix
	}

	switch len(parts) {
	case 2:
		if Operation(parts[1]) != OpClose {
			return Action{}, errInvalidAction
		}
		return Action{Op: OpClose}, nil
	case 3:
		if Operation(parts[1]) != OpSetLanguage {
			return Action{}, errInvalidAction
		}
		if !lang.IsSupported(parts[2]) {
			return Action{}, errInvalidLanguage
		}
		return Action{Op: OpSetLanguage, Language: parts[2]}, nil
	default:
		return Action{}, errInvalidAction
	}
}

func validateCallbackData(data string) (string, error) {
	if data == "" {
		return "", errInvalidAction
	}
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}
