package protocol

import (
	"github.com/softfab/taskrunner/internal/request"
	"github.com/softfab/taskrunner/internal/result"
)

// BuildExecutionTaskDone builds the TaskDone report for an execution or
// abort run, per ExecutionRunFactory.reportResult's with-reports form.
// logFileName, if non-empty, is appended to the report list alongside
// whatever reports the wrapper itself recorded.
func BuildExecutionTaskDone(run RunID, logFileName string, res result.Result) *request.FormRequest {
	req := request.NewFormRequest("TaskDone")
	req.AddQueryParam("id", run.JobID)
	req.AddQueryParam("name", run.TaskID)

	if res.Code != result.Unknown {
		req.AddBodyParam("result", res.Code.String())
	}
	if res.Summary != "" {
		req.AddBodyParam("summary", res.Summary)
	}

	for _, p := range res.SortedReportPriorities() {
		req.AddBodyParam("report", res.Reports[p])
	}
	if logFileName != "" {
		req.AddBodyParam("report", logFileName)
	}

	for outputKey, locator := range res.Locators {
		req.AddBodyParam(outputKey+".locator", locator)
	}
	for key, value := range res.Extracted {
		req.AddBodyParam(key, value)
	}

	return req
}

// BuildExtractionTaskDone builds the TaskDone report for a shadow
// extraction run: no output locators, no reports.
func BuildExtractionTaskDone(shadowID string, res result.Result) *request.FormRequest {
	req := request.NewFormRequest("TaskDone")
	req.AddQueryParam("shadowId", shadowID)

	if res.HasExtract {
		req.AddBodyParam("extraction.result", res.ExtractCode.String())
	}
	if res.Summary != "" {
		req.AddBodyParam("summary", res.Summary)
	}
	for key, value := range res.Extracted {
		req.AddBodyParam(key, value)
	}

	return req
}

// BuildTaskReport builds the optional start-of-run TaskReport
// advertisement of a run's report base URL.
func BuildTaskReport(run RunID, reportBaseURL string) *request.FormRequest {
	req := request.NewFormRequest("TaskReport")
	req.AddQueryParam("id", run.JobID)
	req.AddQueryParam("name", run.TaskID)
	req.AddBodyParam("url", reportBaseURL)
	return req
}
