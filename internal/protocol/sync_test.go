package protocol

import (
	"strings"
	"testing"
)

func TestBuildSyncRequest(t *testing.T) {
	run := &RunID{JobID: "230101-1200-ABCD", TaskID: "build", RunID: "0"}
	req := BuildSyncRequest("pc-07", "v1.2.3", run, "")
	if req.Page() != "Synchronize" {
		t.Errorf("Page = %q", req.Page())
	}
	if req.BodyType() != "text/xml" {
		t.Errorf("BodyType = %q", req.BodyType())
	}
	body := string(req.Body())
	for _, want := range []string{`host="pc-07"`, `runnerVersion="v1.2.3"`, `jobId="230101-1200-ABCD"`, `taskId="build"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %q missing %q", body, want)
		}
	}
}

func TestParseResponseOrdering(t *testing.T) {
	doc := `<response>
		<start>
			<run jobId="230101-1200-ABCD" taskId="build" runId="0"/>
			<task target="x" framework="f" script="build"/>
		</start>
		<wait seconds="15"/>
	</response>`
	cmds, err := ParseResponse([]byte(doc))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if cmds[0].Kind != CommandStart || cmds[0].Start.Run.TaskID != "build" {
		t.Errorf("cmds[0] = %+v", cmds[0])
	}
	if cmds[1].Kind != CommandWait || cmds[1].WaitSeconds != 15 {
		t.Errorf("cmds[1] = %+v", cmds[1])
	}
}

func TestParseResponseExtract(t *testing.T) {
	doc := `<response>
		<extract>
			<shadowrun shadowId="SID-7"/>
			<task target="x" framework="f" script="extract"/>
		</extract>
	</response>`
	cmds, err := ParseResponse([]byte(doc))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Kind != CommandExtract || cmds[0].Extract.ShadowID != "SID-7" {
		t.Fatalf("cmds = %+v", cmds)
	}
}

func TestParseResponseAbortAndExit(t *testing.T) {
	doc := `<response><abort/><exit/></response>`
	cmds, err := ParseResponse([]byte(doc))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(cmds) != 2 || cmds[0].Kind != CommandAbort || cmds[1].Kind != CommandExit {
		t.Fatalf("cmds = %+v", cmds)
	}
}

func TestParseResponseRejectsNegativeWait(t *testing.T) {
	doc := `<response><wait seconds="-1"/></response>`
	if _, err := ParseResponse([]byte(doc)); err == nil {
		t.Fatal("expected error for negative wait seconds")
	}
}

func TestParseResponseRejectsUnknownCommand(t *testing.T) {
	doc := `<response><bogus/></response>`
	if _, err := ParseResponse([]byte(doc)); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestParseResponseRejectsWrongRoot(t *testing.T) {
	doc := `<notresponse></notresponse>`
	if _, err := ParseResponse([]byte(doc)); err == nil {
		t.Fatal("expected error for wrong root element")
	}
}
