package request

import "testing"

func TestFormRequestPreservesOrderAndRepeats(t *testing.T) {
	r := NewFormRequest("TaskDone")
	r.AddQueryParam("id", "230101-1200-ABCD")
	r.AddQueryParam("name", "build")
	r.AddBodyParam("result", "ok")
	r.AddBodyParamList("report", []string{"log.txt", "coverage.html"})

	if got, want := r.QueryString(), "id=230101-1200-ABCD&name=build"; got != want {
		t.Errorf("QueryString = %q, want %q", got, want)
	}
	if got, want := string(r.Body()), "result=ok&report=log.txt&report=coverage.html"; got != want {
		t.Errorf("Body = %q, want %q", got, want)
	}
	if got, want := r.BodyType(), "application/x-www-form-urlencoded"; got != want {
		t.Errorf("BodyType = %q, want %q", got, want)
	}
}

func TestFormRequestNoBodyType(t *testing.T) {
	r := NewFormRequest("Synchronize")
	if got := r.BodyType(); got != "" {
		t.Errorf("BodyType = %q, want empty for a request with no body params", got)
	}
}

func TestFormRequestEscapesValues(t *testing.T) {
	r := NewFormRequest("TaskDone")
	r.AddBodyParam("summary", "a&b=c")
	if got, want := string(r.Body()), "summary=a%26b%3Dc"; got != want {
		t.Errorf("Body = %q, want %q", got, want)
	}
}

func TestXMLRequest(t *testing.T) {
	r := &XMLRequest{PageName: "Synchronize", XMLBody: []byte("<request/>")}
	if r.Page() != "Synchronize" {
		t.Errorf("Page = %q", r.Page())
	}
	if r.QueryString() != "" {
		t.Errorf("QueryString = %q, want empty", r.QueryString())
	}
	if r.BodyType() != "text/xml" {
		t.Errorf("BodyType = %q", r.BodyType())
	}
	if string(r.Body()) != "<request/>" {
		t.Errorf("Body = %q", r.Body())
	}
}
