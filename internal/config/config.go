// Package config loads the Task Runner's XML configuration file.
//
// The file is read once at process startup and treated as immutable for
// the lifetime of the process. Binding is a handwritten encoding/xml
// struct-tag mapping per section rather than a generic reflective
// unmarshaller, per the redesign note on reflective config binding.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// File is the bound configuration tree.
type File struct {
	ControlCenter ControlCenter
	Output        Output
	Generic       Generic
	Wrappers      []Wrapper
	Parameters    map[string]string
}

// ControlCenter holds the coordinator connection settings.
type ControlCenter struct {
	ServerBaseURL string
	TokenID       string
	TokenPass     string
}

// Output holds report/product directory and URL settings.
type Output struct {
	ReportBaseDir  string
	ProductBaseDir string
	ReportBaseURL  string
	ProductBaseURL string
}

// Generic holds logging and process-wrapper settings.
type Generic struct {
	LogFile        string
	LogLevel       string
	ProcessWrapper string
}

// Wrapper is one configured wrapper search directory.
type Wrapper struct {
	Dir string
}

var paramNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

// xmlFile mirrors the on-disk XML shape. Legacy spellings for the output
// section are bound onto the same fields so old configuration files keep
// parsing unchanged.
type xmlFile struct {
	XMLName       xml.Name      `xml:"taskrunner"`
	ControlCenter xmlCC         `xml:"controlCenter"`
	Output        xmlOutput     `xml:"output"`
	Generic       xmlGeneric    `xml:"generic"`
	Wrappers      []xmlWrapper  `xml:"wrappers"`
	Parameters    []xmlParam    `xml:"parameter"`
}

type xmlCC struct {
	ServerBaseURL string `xml:"serverBaseURL"`
	TokenID       string `xml:"tokenId"`
	TokenPass     string `xml:"tokenPass"`
}

type xmlOutput struct {
	ReportBaseDir  string `xml:"reportBaseDir"`
	ProductBaseDir string `xml:"productBaseDir"`
	ReportBaseURL  string `xml:"reportBaseURL"`
	ProductBaseURL string `xml:"productBaseURL"`

	// Legacy spellings, kept for backward compatibility with older
	// configuration files (see config/OutputConfig.java).
	LegacyReportBaseDir  string `xml:"reportbasedir"`
	LegacyProductBaseDir string `xml:"productbasedir"`
	LegacyReportBaseURL  string `xml:"reportbaseurl"`
	LegacyProductBaseURL string `xml:"productbaseurl"`
}

type xmlGeneric struct {
	LogFile        string `xml:"logFile"`
	LogLevel       string `xml:"logLevel"`
	ProcessWrapper string `xml:"processWrapper"`
}

type xmlWrapper struct {
	Dir string `xml:"dir"`
}

type xmlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Load reads and binds the configuration file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file %q: %w", path, err)
	}
	return Parse(data, path)
}

// Parse binds XML configuration data, as read from source (used only for
// error messages).
func Parse(data []byte, source string) (File, error) {
	var raw xmlFile
	if err := xml.Unmarshal(data, &raw); err != nil {
		return File{}, fmt.Errorf("parse XML in %q: %w", source, err)
	}

	cfg := File{
		ControlCenter: ControlCenter{
			ServerBaseURL: raw.ControlCenter.ServerBaseURL,
			TokenID:       raw.ControlCenter.TokenID,
			TokenPass:     raw.ControlCenter.TokenPass,
		},
		Output: Output{
			ReportBaseDir:  firstNonEmpty(raw.Output.ReportBaseDir, raw.Output.LegacyReportBaseDir),
			ProductBaseDir: firstNonEmpty(raw.Output.ProductBaseDir, raw.Output.LegacyProductBaseDir),
			ReportBaseURL:  firstNonEmpty(raw.Output.ReportBaseURL, raw.Output.LegacyReportBaseURL),
			ProductBaseURL: firstNonEmpty(raw.Output.ProductBaseURL, raw.Output.LegacyProductBaseURL),
		},
		Generic: Generic{
			LogFile:        raw.Generic.LogFile,
			LogLevel:       raw.Generic.LogLevel,
			ProcessWrapper: raw.Generic.ProcessWrapper,
		},
		Parameters: map[string]string{},
	}

	for _, w := range raw.Wrappers {
		cfg.Wrappers = append(cfg.Wrappers, Wrapper{Dir: w.Dir})
	}
	for _, p := range raw.Parameters {
		cfg.Parameters[p.Name] = p.Value
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config in %q: %s", source, strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Validate checks the reference-type-present and format rules a bound
// configuration tree must satisfy.
func (cfg File) Validate() []string {
	var errs []string

	if strings.TrimSpace(cfg.ControlCenter.ServerBaseURL) == "" {
		errs = append(errs, "controlCenter.serverBaseURL is required")
	}
	if strings.TrimSpace(cfg.ControlCenter.TokenID) == "" {
		errs = append(errs, "controlCenter.tokenId is required")
	}
	if strings.TrimSpace(cfg.ControlCenter.TokenPass) == "" {
		errs = append(errs, "controlCenter.tokenPass is required")
	}
	if strings.TrimSpace(cfg.Output.ReportBaseDir) == "" {
		errs = append(errs, "output.reportBaseDir is required")
	}
	if strings.TrimSpace(cfg.Output.ProductBaseDir) == "" {
		errs = append(errs, "output.productBaseDir is required")
	}
	if len(cfg.Wrappers) == 0 {
		errs = append(errs, "wrappers must contain at least one entry")
	}
	for i, w := range cfg.Wrappers {
		if strings.TrimSpace(w.Dir) == "" {
			errs = append(errs, fmt.Sprintf("wrappers[%d].dir is required", i))
		}
	}
	for name := range cfg.Parameters {
		if !paramNamePattern.MatchString(name) {
			errs = append(errs, fmt.Sprintf("parameter name %q is not a valid identifier", name))
		}
	}

	return errs
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

// BaseURL returns the serverBaseURL normalized to end with a trailing
// slash, as ControlCenter.java does before joining it with a request page.
func (cc ControlCenter) BaseURL() string {
	if strings.HasSuffix(cc.ServerBaseURL, "/") {
		return cc.ServerBaseURL
	}
	return cc.ServerBaseURL + "/"
}
