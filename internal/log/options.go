// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format is the format of the log output.
type Format uint8

const (
	// FormatConsole prints the level coloured for a terminal.
	FormatConsole Format = iota
	// FormatPlain prints the level without any colour.
	FormatPlain
)

// ErrFormatNotRecognised is returned by ParseFormat for an unknown format.
var ErrFormatNotRecognised = errors.New("format is not recognised")

// ParseFormat parses "console" or "plain" into a Format.
func ParseFormat(s string) (format Format, err error) {
	switch strings.ToLower(s) {
	case "console":
		return FormatConsole, nil
	case "plain":
		return FormatPlain, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrFormatNotRecognised, s)
}

type contextKeyValues struct {
	key    string
	values []string
}

type settings struct {
	writer  io.Writer
	level   *Level
	format  *Format
	caller  callerSettings
	context []contextKeyValues
}

func newSettings(options []Option) (settings settings) {
	for _, option := range options {
		option(&settings)
	}
	return settings
}

// mergeWith sets values for each field not set
// in the receiving settings using the other settings.
func (s *settings) mergeWith(other settings) {
	if s.writer == nil {
		s.writer = other.writer
	}

	if s.level == nil && other.level != nil {
		value := *other.level
		s.level = &value
	}

	if s.format == nil && other.format != nil {
		value := *other.format
		s.format = &value
	}

	s.caller.mergeWith(other.caller)

	newContext := make([]contextKeyValues, 0, len(other.context)+len(s.context))
	for _, kvs := range other.context {
		newContext = append(newContext, contextKeyValues{
			key:    kvs.key,
			values: append([]string(nil), kvs.values...),
		})
	}

	for _, kvs := range s.context {
		merged := false
		for i := range newContext {
			if newContext[i].key == kvs.key {
				newContext[i].values = append(newContext[i].values, kvs.values...)
				merged = true
				break
			}
		}
		if !merged {
			newContext = append(newContext, kvs)
		}
	}

	if len(newContext) > 0 {
		s.context = newContext
	}
}

func (s *settings) setDefaults() {
	if s.writer == nil {
		s.writer = os.Stdout
	}

	if s.level == nil {
		level := Info
		s.level = &level
	}

	if s.format == nil {
		format := FormatConsole
		s.format = &format
	}

	s.caller.setDefaults()
}

// Option is the type to specify settings modifier
// for the logger operation.
type Option func(s *settings)

// SetLevel sets the level for the logger.
// The level defaults to Info.
func SetLevel(level Level) Option {
	return func(s *settings) {
		s.level = &level
	}
}

// SetCallerFile enables or disables logging the caller file.
// The default is disabled.
func SetCallerFile(enabled bool) Option {
	return func(s *settings) {
		s.caller.file = &enabled
	}
}

// SetCallerLine enables or disables logging the caller line number.
// The default is disabled.
func SetCallerLine(enabled bool) Option {
	return func(s *settings) {
		s.caller.line = &enabled
	}
}

// SetCallerFunc enables or disables logging the caller function.
// The default is disabled.
func SetCallerFunc(enabled bool) Option {
	return func(s *settings) {
		s.caller.funC = &enabled
	}
}

// SetFormat set the format for the logger.
// The format defaults to FormatConsole.
func SetFormat(format Format) Option {
	return func(s *settings) {
		s.format = &format
	}
}

// SetWriter set the writer for the logger.
// The writer defaults to os.Stdout.
func SetWriter(writer io.Writer) Option {
	return func(s *settings) {
		s.writer = writer
	}
}

// AddContext adds the context for the logger as a key values pair.
// It adds them in order. If a key already exists, the value is added to the
// existing values.
func AddContext(key, value string) Option {
	return func(s *settings) {
		for i := range s.context {
			if s.context[i].key == key {
				s.context[i].values = append(s.context[i].values, value)
				return
			}
		}
		newKV := contextKeyValues{key: key, values: []string{value}}
		s.context = append(s.context, newKV)
	}
}
