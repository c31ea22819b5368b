// Package logtail reads the end of a sink file for display.
//
// # Overview
//
// The monitor shows the newest lines the collector has written. This
// package reads those lines from the sink file without loading the whole
// file, and undoes the colored sink markup so the UI can restyle each line
// for a terminal.
//
// # Core Functionality
//
//  1. Read: return the last N lines of a file
//  2. Unwrap/UnwrapLines: strip colored markup, keeping the line color
//
// # Reading Sink Files
//
// Read makes one sequential pass over the file and keeps a ring buffer of
// maxLines entries:
//
//   - Memory is O(maxLines), not O(file size)
//   - Lines come back oldest first
//   - A non-positive maxLines returns every line
//
// Example usage:
//
//	lines, err := logtail.Read("/home/me/.local/share/logcollector/logcat.html", 400)
//	if err != nil {
//		log.Printf("read sink: %v", err)
//	}
//	for _, l := range logtail.UnwrapLines(lines) {
//		fmt.Println(l.Color, l.Text)
//	}
//
// # Ring Buffer Algorithm
//
//  1. Allocate a ring of size maxLines
//  2. For each line in the file:
//     - Store it at the current index
//     - Advance the index, wrapping at maxLines
//     - Count lines up to maxLines
//  3. If fewer than maxLines were seen:
//     - Return the first count entries
//  4. Otherwise:
//     - Return the ring starting at the current index (the oldest line)
//
// # Colored Sink Markup
//
// A colored sink is one HTML document. The prologue and the first unit
// share a line, and the epilogue follows the last unit's newline:
//
//	<body bgcolor="#FFFFFFFF"><font size="3" color="#FF0000">E/x: boom</font></br>
//	<font size="3" color="#0000FF">D/y: ok</font></br>
//	</body>
//
// Unwrap removes the body tags and, when the rest is a font unit, returns
// its text and color. Plain sink lines pass through with an empty Color.
// UnwrapLines drops lines that held nothing but document markup, such as
// the closing </body> line.
//
// Recognized shapes, one per physical line:
//
//   - Prologue + unit: body tag removed, then unwrapped as a unit
//   - Unit: font tag with color, text, </font></br>
//   - Epilogue alone: </body>, dropped by UnwrapLines
//   - Empty document: <body ...></body> on one line, dropped
//   - Anything else: returned as plain text, Color empty
//
// Colors are returned as written, including an alpha byte (#AARRGGBB).
// Converting them to terminal colors is the UI's job.
//
// # Integration With the Monitor
//
//	┌────────────────────┐
//	│ ui.loadTailCmd     │ every poll tick
//	└─────────┬──────────┘
//	          │
//	          ├─────> logtail.Read(sinkPath, tailLines)
//	          ├─────> logtail.UnwrapLines(raw)
//	          └─────> tailMsg{lines} ──> viewport
//	                  └─> renderLine: Color → lipgloss foreground
//
// The collector rewrites its sink at the start of each run, so a tail taken
// across a restart may briefly show fewer lines than requested. The next
// tick picks up the new document.
//
// # Performance Considerations
//
//   - Scanner buffer: 64KB initial, 1MB max line
//   - Memory: O(maxLines × average line length)
//   - Unwrap uses two precompiled regexes per line
//
// # Error Handling
//
// Read returns nil, nil for a missing file: the collector may not have
// opened its sink yet. Other open and scan errors are returned wrapped.
// Unwrap never fails; a line it does not recognise comes back as plain
// text.
//
// # Testing
//
// logtail_test.go covers ring buffer wraparound, short and empty files,
// missing files, and markup round trips for plain and colored lines.
//
// # Scope
//
// logtail does not watch files or follow rotation; the monitor re-reads on
// its own tick. It holds no global state beyond the two compiled patterns.
package logtail
