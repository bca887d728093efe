// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package log

import (
	"bytes"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Logger_log(t *testing.T) {
	originalTimeNow := timeNow
	timeNow = func() time.Time {
		return time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	}
	t.Cleanup(func() { timeNow = originalTimeNow })

	const timePrefix = "2024-01-02T03:04:05Z "

	testCases := map[string]struct {
		settings    settings
		level       Level
		s           string
		outputRegex string
	}{
		"log at trace": {
			settings: settings{
				level:  levelPtr(Trace),
				format: formatPtr(FormatPlain),
				caller: newCallerSettings(false, false, false),
			},
			level:       Trace,
			s:           "some words",
			outputRegex: "^" + timePrefix + "TRCE some words\n$",
		},
		"do not log at trace": {
			settings: settings{
				level:  levelPtr(Debug),
				format: formatPtr(FormatPlain),
				caller: newCallerSettings(false, false, false),
			},
			level:       Trace,
			s:           "some words",
			outputRegex: "^$",
		},
		"show caller": {
			settings: settings{
				level:  levelPtr(Trace),
				format: formatPtr(FormatPlain),
				caller: newCallerSettings(true, true, false),
			},
			level:       Info,
			s:           "some words",
			outputRegex: "^" + timePrefix + "INFO some words\tlog_test.go:L[0-9]+\n$",
		},
		"context": {
			settings: settings{
				level:  levelPtr(Trace),
				format: formatPtr(FormatPlain),
				caller: newCallerSettings(false, false, false),
				context: []contextKeyValues{
					{key: "pkg", values: []string{"storage"}},
					{key: "shard", values: []string{"0", "1"}},
				},
			},
			level:       Warn,
			s:           "some words",
			outputRegex: "^" + timePrefix + "WARN some words\tpkg=storage shard=0,1\n$",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			buffer := bytes.NewBuffer(nil)
			testCase.settings.writer = buffer
			logger := &Logger{
				settings: testCase.settings,
				mutex:    new(sync.Mutex),
			}

			switch testCase.level {
			case Trace:
				logger.Trace(testCase.s)
			case Info:
				logger.Info(testCase.s)
			case Warn:
				logger.Warn(testCase.s)
			}

			regex, err := regexp.Compile(testCase.outputRegex)
			require.NoError(t, err)
			assert.Regexp(t, regex, buffer.String())
		})
	}
}

func Test_Logger_Debugf(t *testing.T) {
	t.Parallel()

	buffer := bytes.NewBuffer(nil)
	logger := New(SetWriter(buffer), SetLevel(Debug), SetFormat(FormatPlain))

	logger.Debugf("applied %d changes to shard %s", 3, "s0")

	assert.Contains(t, buffer.String(), " DBUG applied 3 changes to shard s0\n")
}

func Test_ParseLevel(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		s          string
		level      Level
		errWrapped error
	}{
		"short form": {s: "dbug", level: Debug},
		"long form":  {s: "debug", level: Debug},
		"upper case": {s: "WARN", level: Warn},
		"critical":   {s: "critical", level: Critical},
		"invalid":    {s: "loud", errWrapped: ErrLevelNotRecognised},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			level, err := ParseLevel(testCase.s)

			assert.ErrorIs(t, err, testCase.errWrapped)
			if testCase.errWrapped == nil {
				assert.Equal(t, testCase.level, level)
			}
		})
	}
}

func Test_ParseFormat(t *testing.T) {
	t.Parallel()

	format, err := ParseFormat("Plain")
	require.NoError(t, err)
	assert.Equal(t, FormatPlain, format)

	format, err = ParseFormat("console")
	require.NoError(t, err)
	assert.Equal(t, FormatConsole, format)

	_, err = ParseFormat("json")
	assert.ErrorIs(t, err, ErrFormatNotRecognised)
}
