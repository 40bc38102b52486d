// Package testutil provides test utilities and helpers for imagelog tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
)

// HelperProcessConfig configures the behavior of TestHelperProcess.
type HelperProcessConfig struct {
	// ExitCode is the exit code to return once FailTimes is used up (default 0).
	ExitCode int `json:"exit_code"`
	// Stdout is the content to write to stdout.
	Stdout string `json:"stdout"`
	// Stderr is the content to write to stderr.
	Stderr string `json:"stderr"`
	// FailTimes makes the first N invocations exit 1 with FailStderr.
	// Requires CounterFile, since every invocation is a fresh process.
	FailTimes int `json:"fail_times"`
	// FailStderr is written to stderr by failing invocations.
	FailStderr string `json:"fail_stderr"`
	// CounterFile persists the invocation count across processes.
	CounterFile string `json:"counter_file"`
	// Outputs maps the last command-line argument (the image reference) to the
	// stdout to print. References missing from the map exit 1.
	Outputs map[string]string `json:"outputs,omitempty"`
}

// HelperProcessEnvVars contains the environment variable names used by TestHelperProcess.
const (
	// EnvWantHelperProcess signals that the test binary should run as a helper process.
	EnvWantHelperProcess = "GO_WANT_HELPER_PROCESS"
	// EnvHelperProcessConfig contains JSON-encoded HelperProcessConfig.
	EnvHelperProcessConfig = "GO_HELPER_PROCESS_CONFIG"
	// EnvHelperProcessArgs contains the original command-line arguments (JSON array).
	EnvHelperProcessArgs = "GO_HELPER_PROCESS_ARGS"
)

// TestHelperProcess is a function to be called from a test function to
// implement the helper process pattern. When invoked with GO_WANT_HELPER_PROCESS=1,
// it behaves as a fake inspect command and exits without returning.
//
// Usage in test file:
//
//	func TestHelperProcess(t *testing.T) {
//	    testutil.TestHelperProcess(t)
//	}
func TestHelperProcess(t *testing.T) {
	if os.Getenv(EnvWantHelperProcess) != "1" {
		return
	}

	config := parseHelperConfig()
	args, _ := GetHelperProcessArgs()
	runHelperProcess(config, args)
}

func parseHelperConfig() HelperProcessConfig {
	config := HelperProcessConfig{}
	configJSON := os.Getenv(EnvHelperProcessConfig)
	if configJSON != "" {
		// Ignore parse errors; use defaults on failure
		_ = json.Unmarshal([]byte(configJSON), &config)
	}
	return config
}

// runHelperProcess executes the helper process behavior and always exits.
func runHelperProcess(config HelperProcessConfig, args []string) {
	if config.FailTimes > 0 && config.CounterFile != "" {
		count := bumpCounter(config.CounterFile)
		if count <= config.FailTimes {
			fmt.Fprint(os.Stderr, config.FailStderr)
			os.Exit(1)
		}
	}

	if config.Outputs != nil {
		ref := ""
		if len(args) > 0 {
			ref = args[len(args)-1]
		}
		out, ok := config.Outputs[ref]
		if !ok {
			fmt.Fprintf(os.Stderr, "manifest unknown: %s", ref)
			os.Exit(1)
		}
		fmt.Fprint(os.Stdout, out)
		os.Exit(0)
	}

	if config.Stdout != "" {
		fmt.Fprint(os.Stdout, config.Stdout)
	}
	if config.Stderr != "" {
		fmt.Fprint(os.Stderr, config.Stderr)
	}

	os.Exit(config.ExitCode)
}

// bumpCounter increments the invocation count stored in path and returns it.
func bumpCounter(path string) int {
	data, _ := os.ReadFile(path)
	count, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	count++
	_ = os.WriteFile(path, []byte(strconv.Itoa(count)), 0o644)
	return count
}

// ReadCounter returns how many times the helper process ran with CounterFile set.
func ReadCounter(t *testing.T, path string) int {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	count, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return count
}

// ConfigureTestCommand creates an exec.Cmd that invokes the test binary
// as a helper process instead of the real command.
func ConfigureTestCommand(t *testing.T, testName string, config HelperProcessConfig, args ...string) *exec.Cmd {
	t.Helper()

	testBinary, err := os.Executable()
	if err != nil {
		t.Fatalf("failed to get test binary path: %v", err)
	}

	cmd := exec.Command(testBinary, "-test.run=^"+testName+"$")
	cmd.Env = buildHelperEnv(t, config, args)
	return cmd
}

// FakeCommand returns a function with the exec.CommandContext signature that
// runs the helper process instead of the named program. The program name is
// dropped; only its arguments are forwarded.
func FakeCommand(t *testing.T, testName string, config HelperProcessConfig) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	t.Helper()

	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return ConfigureTestCommand(t, testName, config, args...)
	}
}

func buildHelperEnv(t *testing.T, config HelperProcessConfig, args []string) []string {
	t.Helper()

	env := os.Environ()
	env = append(env, EnvWantHelperProcess+"=1")

	if configJSON, err := json.Marshal(config); err == nil {
		env = append(env, EnvHelperProcessConfig+"="+string(configJSON))
	}

	if argsJSON, err := json.Marshal(args); err == nil {
		env = append(env, EnvHelperProcessArgs+"="+string(argsJSON))
	}

	return env
}

// GetHelperProcessArgs retrieves the original arguments passed to the helper process.
func GetHelperProcessArgs() ([]string, error) {
	argsJSON := os.Getenv(EnvHelperProcessArgs)
	if argsJSON == "" {
		return nil, nil
	}

	var args []string
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, fmt.Errorf("parsing helper process args: %w", err)
	}
	return args, nil
}
