/*
 * iptv-player is a project to browse and play IPTV playlists from the terminal.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DetailLevel selects how much caller information a located error prints.
type DetailLevel int

const (
	// DetailNone keeps the location but stops PrintErrorAndReturn from printing.
	DetailNone DetailLevel = iota
	// DetailSimple prints file:line [function] before the message (default).
	DetailSimple
	// DetailFull also prints the goroutine stack.
	DetailFull
)

// ErrorDetailLevel reads ERROR_DETAIL_LEVEL.
func ErrorDetailLevel() DetailLevel {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ERROR_DETAIL_LEVEL"))) {
	case "none":
		return DetailNone
	case "full":
		return DetailFull
	default:
		return DetailSimple
	}
}

// LocatedError is an error annotated with the place it was first reported.
type LocatedError struct {
	Err      error
	File     string
	Line     int
	Function string
	Stack    string
}

func (e *LocatedError) Error() string {
	msg := fmt.Sprintf("%s:%d [%s]: %v", filepath.Base(e.File), e.Line, e.Function, e.Err)
	if e.Stack == "" {
		return msg
	}
	return msg + "\nStack Trace:\n" + e.Stack
}

func (e *LocatedError) Unwrap() error {
	return e.Err
}

// locate wraps err with the location skip frames above its caller. Errors
// that already carry a location are returned as is.
func locate(err error, skip int) error {
	if err == nil {
		return nil
	}
	var le *LocatedError
	if errors.As(err, &le) {
		return err
	}

	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return fmt.Errorf("error occurred: %w", err)
	}
	le = &LocatedError{Err: err, File: file, Line: line, Function: "unknown"}
	if fn := runtime.FuncForPC(pc); fn != nil {
		le.Function = filepath.Base(fn.Name())
	}

	if ErrorDetailLevel() == DetailFull {
		buf := make([]byte, 8192)
		n := runtime.Stack(buf, false)
		// drop the "goroutine N [running]:" header
		stack := string(buf[:n])
		if i := strings.IndexByte(stack, '\n'); i >= 0 {
			stack = stack[i+1:]
		}
		le.Stack = strings.TrimRight(stack, "\n")
	}
	return le
}

// ErrorWithLocation annotates err with the caller's file, line and function.
// errors.Is and errors.As still see the original error.
func ErrorWithLocation(err error) error {
	return locate(err, 1)
}

// PrintErrorAndReturn annotates err like ErrorWithLocation, prints it to
// stderr unless ERROR_DETAIL_LEVEL is none, and returns it.
func PrintErrorAndReturn(err error) error {
	located := locate(err, 1)
	if located != nil && ErrorDetailLevel() != DetailNone {
		fmt.Fprintln(os.Stderr, located)
	}
	return located
}
