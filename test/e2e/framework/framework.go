package framework

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/creack/pty"
)

const modulePath = "github.com/Hanaasagi/targetlock"

// findProjectRoot searches upwards for the go.mod declaring the main module
func findProjectRoot(startDir string) string {
	dir := startDir
	for {
		content, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil && strings.HasPrefix(strings.TrimSpace(string(content)), "module "+modulePath+"\n") {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Framework runs the targetlock binary under a pseudo terminal. Every
// framework has its own settings, history and state directory, shared by
// the cases it runs, so later cases see measurements recorded by earlier ones.
type Framework struct {
	BinaryPath string
	Timeout    time.Duration
	WorkDir    string
}

// TestCase represents a single e2e test case
type TestCase struct {
	Name           string
	Args           []string
	Keys           string
	ExpectedOutput string
	Timeout        time.Duration
}

// TestResult represents the result of a test case
type TestResult struct {
	Name    string
	Passed  bool
	Error   string
	Output  string
	Elapsed time.Duration
}

// NewFramework creates a framework with a fresh working directory.
func NewFramework() (*Framework, error) {
	dir, err := os.MkdirTemp("", "targetlock-e2e-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	return &Framework{
		Timeout: 5 * time.Second,
		WorkDir: dir,
	}, nil
}

// Close removes the working directory.
func (f *Framework) Close() error {
	return os.RemoveAll(f.WorkDir)
}

// BuildBinary builds the targetlock binary for testing
func (f *Framework) BuildBinary() error {
	if f.BinaryPath != "" {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	projectRoot := findProjectRoot(wd)
	if projectRoot == "" {
		return fmt.Errorf("could not find project root directory from %s", wd)
	}

	buildDir := filepath.Join(projectRoot, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return fmt.Errorf("failed to create build directory: %w", err)
	}
	binaryPath := filepath.Join(buildDir, "targetlock")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/targetlock")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to build binary: %w, output: %s", err, string(output))
	}

	f.BinaryPath = binaryPath
	return nil
}

// command prepares the binary with paths and XDG directories inside WorkDir.
func (f *Framework) command(args []string) *exec.Cmd {
	full := append([]string{
		"--config", filepath.Join(f.WorkDir, "config.toml"),
		"--history-file", filepath.Join(f.WorkDir, "history.toml"),
	}, args...)

	cmd := exec.Command(f.BinaryPath, full...)
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(f.WorkDir, "config"),
		"XDG_STATE_HOME="+filepath.Join(f.WorkDir, "state"),
		"TERM=xterm-256color",
		"TMUX=",
	)
	return cmd
}

// RunTest executes a single test case
func (f *Framework) RunTest(testCase TestCase) TestResult {
	start := time.Now()
	result := TestResult{Name: testCase.Name}
	fail := func(format string, args ...any) TestResult {
		result.Error = fmt.Sprintf(format, args...)
		result.Elapsed = time.Since(start)
		return result
	}

	if err := f.BuildBinary(); err != nil {
		return fail("failed to build binary: %v", err)
	}

	ptmx, err := pty.Start(f.command(testCase.Args))
	if err != nil {
		return fail("failed to start command: %v", err)
	}
	defer ptmx.Close()

	if testCase.Keys != "" {
		// Wait for program initialization
		time.Sleep(300 * time.Millisecond)
		if _, err := ptmx.Write([]byte(testCase.Keys)); err != nil {
			return fail("failed to send keys: %v", err)
		}
	}

	timeout := testCase.Timeout
	if timeout == 0 {
		timeout = f.Timeout
	}
	timeoutCh := time.After(timeout)

	type readResult struct {
		matched bool
		output  string
	}
	doneCh := make(chan readResult, 1)

	go func() {
		reader := bufio.NewReader(ptmx)
		var output strings.Builder
		for {
			b, err := reader.ReadByte()
			if err != nil {
				if err != io.EOF {
					output.WriteString(fmt.Sprintf("\n[read error: %v]", err))
				}
				doneCh <- readResult{output: output.String()}
				return
			}
			output.WriteByte(b)
			if strings.Contains(output.String(), testCase.ExpectedOutput) {
				doneCh <- readResult{matched: true, output: output.String()}
				return
			}
		}
	}()

	select {
	case r := <-doneCh:
		result.Passed = r.matched
		result.Output = r.output
		if !r.matched {
			result.Error = "process exited without expected output"
		}
	case <-timeoutCh:
		result.Error = "test timed out"
	}

	result.Elapsed = time.Since(start)
	return result
}

// RunTests executes multiple test cases in order
func (f *Framework) RunTests(testCases []TestCase) []TestResult {
	results := make([]TestResult, len(testCases))
	for i, testCase := range testCases {
		results[i] = f.RunTest(testCase)
		status := "PASS"
		if !results[i].Passed {
			status = "FAIL"
		}
		fmt.Printf("%s %s (%.2fs) %s\n", status, testCase.Name, results[i].Elapsed.Seconds(), results[i].Error)
	}
	return results
}
