package taskrun

import (
	"fmt"
	"sort"
	"strings"

	"github.com/softfab/taskrunner/internal/protocol"
	"github.com/softfab/taskrunner/internal/variables"
)

// VarContext carries everything BuildVariables needs to construct one
// run's wrapper variable tree, independent of whether the run is an
// execution or an extraction.
type VarContext struct {
	ReportRoot  string
	ProductRoot string
	WrapperRoot string
	JobID       string
	TaskID      string
	Target      string
	CCURL       string
	Inputs      []protocol.InputInfo
	Outputs     []protocol.OutputInfo
	Resources   []protocol.ResourceRef
	Parameters  map[string]string
	GlobalParams map[string]string
	ResultsPath string
}

// BuildVariables assembles the wrapper variable tree described in the
// Task Run Engine's environment-building step, grounded on
// ExecutionRunFactory.java's createVariables.
func BuildVariables(ec VarContext) (*variables.OrderedMap, error) {
	root := variables.NewOrderedMap()

	root.Set("SF_REPORT_ROOT", variables.String(ec.ReportRoot))
	root.Set("SF_PRODUCT_ROOT", variables.String(ec.ProductRoot))
	root.Set("SF_WRAPPER_ROOT", variables.String(ec.WrapperRoot))
	root.Set("SF_JOB_ID", variables.String(ec.JobID))
	root.Set("SF_TASK_ID", variables.String(ec.TaskID))
	root.Set("SF_TARGET", variables.String(ec.Target))
	root.Set("SF_CC_URL", variables.String(ec.CCURL))

	sfProd := variables.NewOrderedMap()
	inputNames := make([]variables.Value, 0, len(ec.Inputs))
	for _, in := range ec.Inputs {
		inputNames = append(inputNames, variables.String(in.Name))
		root.Set(in.Name, variables.String(in.Locator))

		if !in.Combined() {
			continue
		}
		taskIDs := make([]string, 0, len(in.Producers))
		for tid := range in.Producers {
			taskIDs = append(taskIDs, tid)
		}
		sort.Strings(taskIDs)
		sanitized, err := sanitizeProducers(taskIDs)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name, err)
		}
		prodForInput := variables.NewOrderedMap()
		for _, tid := range taskIDs {
			p := in.Producers[tid]
			entry := variables.NewOrderedMap()
			entry.Set("TASK", variables.String(p.TaskID))
			entry.Set("RESULT", variables.String(p.Result))
			entry.Set("LOCATOR", variables.String(p.Locator))
			prodForInput.Set(sanitized[tid], variables.MapValue(entry))
		}
		sfProd.Set(in.Name, variables.MapValue(prodForInput))
	}
	root.Set("SF_INPUTS", variables.SeqValue(inputNames))
	if sfProd.Len() > 0 {
		root.Set("SF_PROD", variables.MapValue(sfProd))
	}

	outputNames := make([]string, len(ec.Outputs))
	for i, out := range ec.Outputs {
		outputNames[i] = out.Name
	}
	sort.Strings(outputNames)
	outSeq := make([]variables.Value, len(outputNames))
	for i, n := range outputNames {
		outSeq[i] = variables.String(n)
	}
	root.Set("SF_OUTPUTS", variables.SeqValue(outSeq))

	if ec.Resources != nil {
		resSeq := make([]variables.Value, len(ec.Resources))
		for i, r := range ec.Resources {
			resSeq[i] = variables.String(r.Ref)
			root.Set(r.Ref, variables.String(r.Locator))
		}
		root.Set("SF_RESOURCES", variables.SeqValue(resSeq))
	}

	for name, value := range ec.Parameters {
		if strings.HasPrefix(name, "sf.") {
			continue
		}
		root.Set(name, variables.String(value))
	}
	for name, value := range ec.GlobalParams {
		root.Set(name, variables.String(value))
	}

	if ec.ResultsPath != "" {
		root.Set("SF_RESULTS", variables.String(ec.ResultsPath))
	}

	return root, nil
}

// mergeEnv overlays extra onto base, replacing any existing "KEY=..."
// entry in place and appending new keys, grounded on the teacher's
// mergeEnv in agent_exec_env.go.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := append([]string(nil), base...)
	index := map[string]int{}
	for i, e := range out {
		if eq := strings.IndexByte(e, '='); eq > 0 {
			index[e[:eq]] = i
		}
	}
	for k, v := range extra {
		entry := k + "=" + v
		if pos, ok := index[k]; ok {
			out[pos] = entry
		} else {
			out = append(out, entry)
		}
	}
	return out
}
