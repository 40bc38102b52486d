// Package health provides environment checks for imagelog. It validates that
// the inspect command is installed, the document template renders, and the
// commit history directory is a git repository, returning structured reports
// used by the 'imagelog doctor' command.
package health

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	"github.com/ariel-frischer/imagelog/internal/changelog"
	"github.com/ariel-frischer/imagelog/internal/config"
	"github.com/ariel-frischer/imagelog/internal/git"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// RunHealthChecks runs all health checks for cfg and returns a report.
// An empty workdir skips the repository check.
func RunHealthChecks(cfg *config.Configuration, workdir string) *HealthReport {
	report := &HealthReport{Passed: true}

	for _, check := range []CheckResult{
		CheckInspectCommand(cfg.InspectCommand),
		CheckTemplate(cfg.TemplatePath),
		CheckWorkdir(workdir),
	} {
		report.Checks = append(report.Checks, check)
		if !check.Passed {
			report.Passed = false
		}
	}
	return report
}

// CheckInspectCommand checks that the program of the inspect command line is
// available.
func CheckInspectCommand(commandLine string) CheckResult {
	result := CheckResult{Name: "Inspect command"}

	argv, err := shlex.Split(commandLine)
	if err != nil || len(argv) == 0 {
		result.Message = fmt.Sprintf("cannot parse %q", commandLine)
		return result
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		result.Message = fmt.Sprintf("%s not found in PATH", argv[0])
		return result
	}

	result.Passed = true
	result.Message = fmt.Sprintf("%s found at %s", argv[0], path)
	return result
}

// CheckTemplate checks that the document template at path loads and uses
// only known fields. An empty path checks the embedded template.
func CheckTemplate(path string) CheckResult {
	result := CheckResult{Name: "Template"}
	source := path
	if source == "" {
		source = "embedded"
	}

	body, err := changelog.LoadBody(path)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	if err := changelog.CheckBody(body); err != nil {
		result.Message = fmt.Sprintf("%s: %v", source, err)
		return result
	}

	pkgs := changelog.ParseTemplate(body).Packages()
	result.Passed = true
	result.Message = fmt.Sprintf("%s template, %d major packages", source, len(pkgs))
	return result
}

// CheckWorkdir checks that the commit history directory is a git repository.
func CheckWorkdir(workdir string) CheckResult {
	result := CheckResult{Name: "Commit history"}
	if workdir == "" {
		result.Passed = true
		result.Message = "disabled"
		return result
	}
	if !git.IsRepository(workdir) {
		result.Message = fmt.Sprintf("%s is not a git repository; the Commits section will be left out", workdir)
		return result
	}
	result.Passed = true
	result.Message = fmt.Sprintf("%s is a git repository", workdir)
	return result
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var output strings.Builder
	for _, check := range report.Checks {
		if check.Passed {
			fmt.Fprintf(&output, "✓ %s: %s\n", check.Name, check.Message)
		} else {
			fmt.Fprintf(&output, "✗ %s: %s\n", check.Name, check.Message)
		}
	}
	return output.String()
}
