package protocol

type xmlRun struct {
	JobID  string `xml:"jobId,attr"`
	TaskID string `xml:"taskId,attr"`
	RunID  string `xml:"runId,attr"`
}

type xmlShadowRun struct {
	ShadowID string `xml:"shadowId,attr"`
}

type xmlParameter struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlTask struct {
	Target     string         `xml:"target,attr"`
	Framework  string         `xml:"framework,attr"`
	Script     string         `xml:"script,attr"`
	Parameters []xmlParameter `xml:"parameter"`
}

type xmlProducer struct {
	TaskID  string `xml:"taskId,attr"`
	Locator string `xml:"locator,attr"`
	Result  string `xml:"result,attr"`
}

type xmlInput struct {
	Name      string        `xml:"name,attr"`
	Locator   string        `xml:"locator,attr"`
	Producers []xmlProducer `xml:"producer"`
}

type xmlOutput struct {
	Name string `xml:"name,attr"`
}

type xmlResource struct {
	Ref        string         `xml:"ref,attr"`
	Locator    string         `xml:"locator,attr"`
	Parameters []xmlParameter `xml:"parameter"`
}

type xmlStart struct {
	Run       xmlRun        `xml:"run"`
	Task      xmlTask       `xml:"task"`
	Inputs    []xmlInput    `xml:"input"`
	Outputs   []xmlOutput   `xml:"output"`
	Resources []xmlResource `xml:"resource"`
}

type xmlExtract struct {
	ShadowRun xmlShadowRun `xml:"shadowrun"`
	Task      xmlTask      `xml:"task"`
	Inputs    []xmlInput   `xml:"input"`
	Outputs   []xmlOutput  `xml:"output"`
}

type xmlWait struct {
	Seconds int `xml:"seconds,attr"`
}

func taskInfoFrom(t xmlTask) TaskInfo {
	params := map[string]string{}
	for _, p := range t.Parameters {
		params[p.Name] = p.Value
	}
	return TaskInfo{Target: t.Target, Framework: t.Framework, Script: t.Script, Parameters: params}
}

func inputInfosFrom(ins []xmlInput) []InputInfo {
	out := make([]InputInfo, 0, len(ins))
	for _, in := range ins {
		info := InputInfo{Name: in.Name, Locator: in.Locator}
		if len(in.Producers) > 0 {
			info.Producers = map[string]Producer{}
			for _, p := range in.Producers {
				info.Producers[p.TaskID] = Producer{TaskID: p.TaskID, Locator: p.Locator, Result: p.Result}
			}
		}
		out = append(out, info)
	}
	return out
}

func outputInfosFrom(outs []xmlOutput) []OutputInfo {
	out := make([]OutputInfo, 0, len(outs))
	for _, o := range outs {
		out = append(out, OutputInfo{Name: o.Name})
	}
	return out
}

func resourceRefsFrom(rs []xmlResource) []ResourceRef {
	out := make([]ResourceRef, 0, len(rs))
	for _, r := range rs {
		params := map[string]string{}
		for _, p := range r.Parameters {
			params[p.Name] = p.Value
		}
		out = append(out, ResourceRef{Ref: r.Ref, Locator: r.Locator, Parameters: params})
	}
	return out
}

func executeRunInfoFrom(s xmlStart) ExecuteRunInfo {
	return ExecuteRunInfo{
		Run:       RunID{JobID: s.Run.JobID, TaskID: s.Run.TaskID, RunID: s.Run.RunID},
		Task:      taskInfoFrom(s.Task),
		Inputs:    inputInfosFrom(s.Inputs),
		Outputs:   outputInfosFrom(s.Outputs),
		Resources: resourceRefsFrom(s.Resources),
	}
}

func extractRunInfoFrom(e xmlExtract) ExtractRunInfo {
	return ExtractRunInfo{
		ShadowID: e.ShadowRun.ShadowID,
		Task:     taskInfoFrom(e.Task),
		Inputs:   inputInfosFrom(e.Inputs),
		Outputs:  outputInfosFrom(e.Outputs),
	}
}
