package protocol

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/softfab/taskrunner/internal/request"
)

// CommandKind identifies which Synchronize response command a Command
// carries.
type CommandKind int

const (
	CommandStart CommandKind = iota
	CommandExtract
	CommandAbort
	CommandWait
	CommandExit
)

// Command is one element of a Synchronize response's command stream, in
// the document order it appeared — order matters because start and wait
// may coexist and must be applied in sequence.
type Command struct {
	Kind        CommandKind
	Start       *ExecuteRunInfo
	Extract     *ExtractRunInfo
	WaitSeconds int
}

// BuildSyncRequest constructs the XML Synchronize request body. current
// describes the in-progress execution run, if any; shadowID describes an
// in-progress extraction run, if any. At most one of the two is set in
// practice, since the agent runs at most one task at a time.
func BuildSyncRequest(host, runnerVersion string, current *RunID, shadowID string) *request.XMLRequest {
	var buf bytes.Buffer
	buf.WriteString(`<request host="`)
	xml.EscapeText(&buf, []byte(host))
	buf.WriteString(`" runnerVersion="`)
	xml.EscapeText(&buf, []byte(runnerVersion))
	buf.WriteString(`">`)
	if current != nil {
		fmt.Fprintf(&buf, `<run jobId="%s" taskId="%s" runId="%s"/>`,
			escapeAttr(current.JobID), escapeAttr(current.TaskID), escapeAttr(current.RunID))
	}
	if shadowID != "" {
		fmt.Fprintf(&buf, `<shadowrun shadowId="%s"/>`, escapeAttr(shadowID))
	}
	buf.WriteString(`</request>`)
	return &request.XMLRequest{PageName: "Synchronize", XMLBody: buf.Bytes()}
}

func escapeAttr(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// ParseResponse parses a Synchronize response body into its ordered
// command stream. Parse errors on individual commands are returned so
// the caller can log them as probable protocol-version mismatches and
// continue the loop rather than aborting it.
func ParseResponse(data []byte) ([]Command, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var commands []Command
	rootSeen := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed response XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if !rootSeen {
			if start.Name.Local != "response" {
				return nil, fmt.Errorf("invalid response root element %q", start.Name.Local)
			}
			rootSeen = true
			continue
		}

		cmd, err := decodeCommand(dec, start)
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}

	if !rootSeen {
		return nil, fmt.Errorf("missing response root element")
	}
	return commands, nil
}

func decodeCommand(dec *xml.Decoder, start xml.StartElement) (Command, error) {
	switch start.Name.Local {
	case "start":
		var s xmlStart
		if err := dec.DecodeElement(&s, &start); err != nil {
			return Command{}, fmt.Errorf("decode <start>: %w", err)
		}
		info := executeRunInfoFrom(s)
		return Command{Kind: CommandStart, Start: &info}, nil

	case "extract":
		var e xmlExtract
		if err := dec.DecodeElement(&e, &start); err != nil {
			return Command{}, fmt.Errorf("decode <extract>: %w", err)
		}
		info := extractRunInfoFrom(e)
		return Command{Kind: CommandExtract, Extract: &info}, nil

	case "abort":
		if err := dec.Skip(); err != nil {
			return Command{}, fmt.Errorf("decode <abort>: %w", err)
		}
		return Command{Kind: CommandAbort}, nil

	case "wait":
		var w xmlWait
		if err := dec.DecodeElement(&w, &start); err != nil {
			return Command{}, fmt.Errorf("decode <wait>: %w", err)
		}
		if w.Seconds < 0 {
			return Command{}, fmt.Errorf("<wait seconds=%d/> must not be negative", w.Seconds)
		}
		return Command{Kind: CommandWait, WaitSeconds: w.Seconds}, nil

	case "exit":
		if err := dec.Skip(); err != nil {
			return Command{}, fmt.Errorf("decode <exit>: %w", err)
		}
		return Command{Kind: CommandExit}, nil

	default:
		return Command{}, fmt.Errorf("invalid command <%s>", start.Name.Local)
	}
}
