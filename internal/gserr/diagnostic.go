package gserr

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// diagnosticWrapWidth is the column width diagnostics are wrapped to before
// being handed to a terminal, matching the width rosed.Edit(...).Wrap(60) is
// called with in tunascript/syntax/ast.go.
const diagnosticWrapWidth = 60

// MessageForFile formats the error as a CLI diagnostic attributed to file:
//
//	<file>:<line>:<column>: <code>: <message>
//
// Long messages (e.g. ones listing candidate overloads) are wrapped to
// diagnosticWrapWidth so they remain readable in a terminal, the same
// technique the pack uses for template text via rosed.Edit(...).Wrap(...).
func (e *Error) MessageForFile(file string) string {
	prefix := fmt.Sprintf("%s: %s: ", e.Code, file)
	if file == "" {
		prefix = fmt.Sprintf("%s: ", e.Code)
	} else {
		prefix = fmt.Sprintf("%s:%s: %s: ", file, e.Pos, e.Code)
	}

	body := e.msg
	if e.wrap != nil {
		body = fmt.Sprintf("%s: %s", body, e.wrap.Error())
	}

	wrapped := rosed.Edit(body).Wrap(diagnosticWrapWidth).String()
	return prefix + wrapped
}
